package pgsql

import (
	"context"
	"errors"
	"strconv"

	"github.com/herafoundry/hera_data_engine/internal/apperrors"
	"github.com/herafoundry/hera_data_engine/internal/core/domain"
	portsrepo "github.com/herafoundry/hera_data_engine/internal/core/ports/repositories"
	"github.com/herafoundry/hera_data_engine/internal/models"
	"github.com/herafoundry/hera_data_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxRelationshipRepository struct {
	BaseRepository
}

// newPgxRelationshipRepository creates a new repository for the relationship edge log.
func newPgxRelationshipRepository(pool *pgxpool.Pool) portsrepo.RelationshipRepositoryFacade {
	return &PgxRelationshipRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxRelationshipRepository implements portsrepo.RelationshipRepositoryFacade
var _ portsrepo.RelationshipRepositoryFacade = (*PgxRelationshipRepository)(nil)

const relationshipSelectColumns = `
	relationship_id, organization_id, from_entity_id, to_entity_id,
	relationship_type, smart_code, relationship_data, created_at, created_by
`

func scanRelationshipRows(rows pgx.Rows) ([]models.Relationship, error) {
	defer rows.Close()
	result := []models.Relationship{}
	for rows.Next() {
		var m models.Relationship
		err := rows.Scan(
			&m.RelationshipID,
			&m.OrganizationID,
			&m.FromEntityID,
			&m.ToEntityID,
			&m.RelationshipType,
			&m.SmartCode,
			&m.Data,
			&m.CreatedAt,
			&m.CreatedBy,
		)
		if err != nil {
			return nil, storageError("failed to scan relationship row", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("error iterating relationship rows", err)
	}
	return result, nil
}

func (r *PgxRelationshipRepository) SaveRelationship(ctx context.Context, rel domain.Relationship) error {
	m := mapping.ToModelRelationship(rel)
	query := `
		INSERT INTO core_relationships (` + relationshipSelectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.RelationshipID,
		m.OrganizationID,
		m.FromEntityID,
		m.ToEntityID,
		m.RelationshipType,
		m.SmartCode,
		m.Data,
		m.CreatedAt,
		m.CreatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return apperrors.NewAppError(409, "relationship ID "+m.RelationshipID+" already exists", apperrors.ErrDuplicate)
			}
			if pgErr.Code == "23503" { // foreign_key_violation: endpoint entity missing
				return apperrors.NewNotFoundError("relationship endpoint entity not found")
			}
		}
		return storageError("failed to save relationship "+m.RelationshipID, err)
	}
	return nil
}

// ListRelationships returns edges newest-first so the current edge of an
// exclusive type is always index zero.
func (r *PgxRelationshipRepository) ListRelationships(ctx context.Context, organizationID string, filter portsrepo.RelationshipFilter) ([]domain.Relationship, error) {
	query := `
		SELECT ` + relationshipSelectColumns + `
		FROM core_relationships
		WHERE organization_id = $1
	`
	args := []any{organizationID}

	if filter.FromEntityID != "" {
		args = append(args, filter.FromEntityID)
		query += ` AND from_entity_id = $` + strconv.Itoa(len(args))
	}
	if filter.ToEntityID != "" {
		args = append(args, filter.ToEntityID)
		query += ` AND to_entity_id = $` + strconv.Itoa(len(args))
	}
	if filter.RelationshipType != "" {
		args = append(args, filter.RelationshipType)
		query += ` AND relationship_type = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC, relationship_id DESC;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storageError("failed to query relationships for organization "+organizationID, err)
	}
	modelRels, err := scanRelationshipRows(rows)
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainRelationshipSlice(modelRels), nil
}

func (r *PgxRelationshipRepository) FindRelationshipsByEntityIDs(ctx context.Context, organizationID string, entityIDs []string) (map[string][]domain.Relationship, error) {
	result := make(map[string][]domain.Relationship, len(entityIDs))
	if len(entityIDs) == 0 {
		return result, nil
	}
	query := `
		SELECT ` + relationshipSelectColumns + `
		FROM core_relationships
		WHERE organization_id = $1 AND from_entity_id = ANY($2)
		ORDER BY created_at DESC, relationship_id DESC;
	`
	rows, err := r.Pool.Query(ctx, query, organizationID, entityIDs)
	if err != nil {
		return nil, storageError("failed to query relationships by entity ids", err)
	}
	modelRels, err := scanRelationshipRows(rows)
	if err != nil {
		return nil, err
	}
	for _, m := range modelRels {
		result[m.FromEntityID] = append(result[m.FromEntityID], mapping.ToDomainRelationship(m))
	}
	return result, nil
}

func (r *PgxRelationshipRepository) DeleteRelationshipsByEntityID(ctx context.Context, organizationID, entityID string) error {
	query := `
		DELETE FROM core_relationships
		WHERE organization_id = $1 AND (from_entity_id = $2 OR to_entity_id = $2);
	`
	if _, err := r.Pool.Exec(ctx, query, organizationID, entityID); err != nil {
		return storageError("failed to delete relationships for entity "+entityID, err)
	}
	return nil
}
