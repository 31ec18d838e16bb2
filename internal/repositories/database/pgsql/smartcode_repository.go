package pgsql

import (
	"context"
	"errors"

	"github.com/herafoundry/hera_data_engine/internal/apperrors"
	"github.com/herafoundry/hera_data_engine/internal/core/domain"
	portsrepo "github.com/herafoundry/hera_data_engine/internal/core/ports/repositories"
	"github.com/herafoundry/hera_data_engine/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxSmartCodeRepository struct {
	BaseRepository
}

// newPgxSmartCodeRepository creates a new repository for the smart-code registry.
func newPgxSmartCodeRepository(pool *pgxpool.Pool) portsrepo.SmartCodeRepositoryFacade {
	return &PgxSmartCodeRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxSmartCodeRepository implements portsrepo.SmartCodeRepositoryFacade
var _ portsrepo.SmartCodeRepositoryFacade = (*PgxSmartCodeRepository)(nil)

func (r *PgxSmartCodeRepository) ListSmartCodeEntries(ctx context.Context) ([]domain.SmartCodeEntry, error) {
	query := `
		SELECT prefix, metadata, created_at, created_by, last_updated_at, last_updated_by
		FROM core_smart_codes
		ORDER BY prefix;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, storageError("failed to query smart code registry", err)
	}
	defer rows.Close()

	entries := []domain.SmartCodeEntry{}
	for rows.Next() {
		var m models.SmartCodeEntry
		err := rows.Scan(
			&m.Prefix,
			&m.Metadata,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, storageError("failed to scan smart code row", err)
		}
		entries = append(entries, domain.SmartCodeEntry{
			Prefix:   m.Prefix,
			Metadata: m.Metadata,
			AuditFields: domain.AuditFields{
				CreatedAt:     m.CreatedAt,
				CreatedBy:     m.CreatedBy,
				LastUpdatedAt: m.LastUpdatedAt,
				LastUpdatedBy: m.LastUpdatedBy,
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("error iterating smart code rows", err)
	}
	return entries, nil
}

func (r *PgxSmartCodeRepository) SaveSmartCodeEntry(ctx context.Context, entry domain.SmartCodeEntry) error {
	query := `
		INSERT INTO core_smart_codes (
			prefix, metadata, created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (prefix)
		DO UPDATE SET metadata = EXCLUDED.metadata, last_updated_at = EXCLUDED.last_updated_at, last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.Pool.Exec(ctx, query,
		entry.Prefix,
		entry.Metadata,
		entry.CreatedAt,
		entry.CreatedBy,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "22P02" { // invalid_text_representation on metadata json
			return apperrors.NewAppError(400, "invalid smart code metadata", apperrors.ErrValidation)
		}
		return storageError("failed to save smart code entry "+entry.Prefix, err)
	}
	return nil
}
