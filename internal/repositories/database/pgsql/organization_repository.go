package pgsql

import (
	"context"
	"errors"

	"github.com/herafoundry/hera_data_engine/internal/apperrors"
	"github.com/herafoundry/hera_data_engine/internal/core/domain"
	portsrepo "github.com/herafoundry/hera_data_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxOrganizationRepository struct {
	BaseRepository
}

// newPgxOrganizationRepository creates a new repository for organization data.
func newPgxOrganizationRepository(pool *pgxpool.Pool) portsrepo.OrganizationRepositoryFacade {
	return &PgxOrganizationRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxOrganizationRepository implements portsrepo.OrganizationRepositoryFacade
var _ portsrepo.OrganizationRepositoryFacade = (*PgxOrganizationRepository)(nil)

var FULL_ORGANIZATION_SELECT_QUERY = `
SELECT
	o.organization_id, o.name, o.description, o.is_active,
	o.created_at, o.created_by, o.last_updated_at, o.last_updated_by
FROM organizations o
`

func (r *PgxOrganizationRepository) getOrganizations(ctx context.Context, filterQuery string, args ...any) ([]domain.Organization, error) {
	query := FULL_ORGANIZATION_SELECT_QUERY + filterQuery
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storageError("failed to query organizations", err)
	}
	defer rows.Close()
	organizations, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Organization])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.Organization{}, nil
		}
		return nil, storageError("failed to collect organization rows", err)
	}

	return organizations, nil
}

// SaveOrganization inserts the organization and the creator's ADMIN membership
// in one database transaction so a tenant never exists without an admin.
func (r *PgxOrganizationRepository) SaveOrganization(ctx context.Context, org domain.Organization, creatorMembership domain.OrganizationUser) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	orgQuery := `
		INSERT INTO organizations (
			organization_id, name, description, is_active,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err = tx.Exec(ctx, orgQuery,
		org.OrganizationID,
		org.Name,
		org.Description,
		org.IsActive,
		org.CreatedAt,
		org.CreatedBy,
		org.LastUpdatedAt,
		org.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return apperrors.NewAppError(409, "organization ID "+org.OrganizationID+" already exists", apperrors.ErrDuplicate)
		}
		return storageError("failed to save organization "+org.OrganizationID, err)
	}

	memberQuery := `
		INSERT INTO organization_users (
			organization_id, user_id, role,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err = tx.Exec(ctx, memberQuery,
		creatorMembership.OrganizationID,
		creatorMembership.UserID,
		creatorMembership.Role,
		creatorMembership.CreatedAt,
		creatorMembership.CreatedBy,
		creatorMembership.LastUpdatedAt,
		creatorMembership.LastUpdatedBy,
	)
	if err != nil {
		return storageError("failed to save creator membership for organization "+org.OrganizationID, err)
	}

	return r.Commit(ctx, tx)
}

func (r *PgxOrganizationRepository) FindOrganizationByID(ctx context.Context, organizationID string) (*domain.Organization, error) {
	query := `WHERE o.organization_id = $1`
	organizations, err := r.getOrganizations(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	if len(organizations) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &organizations[0], nil
}

func (r *PgxOrganizationRepository) ListOrganizationsByUserID(ctx context.Context, userID string) ([]domain.Organization, error) {
	query := `
		JOIN organization_users ou ON o.organization_id = ou.organization_id
		WHERE ou.user_id = $1 AND o.is_active = true
		ORDER BY o.name;
	`
	return r.getOrganizations(ctx, query, userID)
}

func (r *PgxOrganizationRepository) FindMembership(ctx context.Context, organizationID, userID string) (*domain.OrganizationUser, error) {
	query := `
		SELECT organization_id, user_id, role, created_at, created_by, last_updated_at, last_updated_by
		FROM organization_users
		WHERE organization_id = $1 AND user_id = $2;
	`
	var membership domain.OrganizationUser
	err := r.Pool.QueryRow(ctx, query, organizationID, userID).Scan(
		&membership.OrganizationID,
		&membership.UserID,
		&membership.Role,
		&membership.CreatedAt,
		&membership.CreatedBy,
		&membership.LastUpdatedAt,
		&membership.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("membership not found")
		}
		return nil, storageError("failed to find membership of user "+userID+" in organization "+organizationID, err)
	}
	return &membership, nil
}

func (r *PgxOrganizationRepository) AddUserToOrganization(ctx context.Context, membership domain.OrganizationUser) error {
	query := `
		INSERT INTO organization_users (
			organization_id, user_id, role,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (organization_id, user_id)
		DO UPDATE SET role = EXCLUDED.role, last_updated_at = EXCLUDED.last_updated_at, last_updated_by = EXCLUDED.last_updated_by;
	` // Upsert: add the member or update their role if they already belong
	_, err := r.Pool.Exec(ctx, query,
		membership.OrganizationID,
		membership.UserID,
		membership.Role,
		membership.CreatedAt,
		membership.CreatedBy,
		membership.LastUpdatedAt,
		membership.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return apperrors.NewNotFoundError("organization " + membership.OrganizationID + " not found")
		}
		return storageError("failed to add user "+membership.UserID+" to organization "+membership.OrganizationID, err)
	}
	return nil
}
