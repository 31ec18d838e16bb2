package pgsql

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/herafoundry/hera_data_engine/internal/apperrors"
	"github.com/herafoundry/hera_data_engine/internal/core/domain"
	portsrepo "github.com/herafoundry/hera_data_engine/internal/core/ports/repositories"
	"github.com/herafoundry/hera_data_engine/internal/models"
	"github.com/herafoundry/hera_data_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxEntityRepository struct {
	BaseRepository
}

// newPgxEntityRepository creates a new repository for entity and dynamic field data.
func newPgxEntityRepository(pool *pgxpool.Pool) portsrepo.EntityRepositoryFacade {
	return &PgxEntityRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxEntityRepository implements portsrepo.EntityRepositoryFacade
var _ portsrepo.EntityRepositoryFacade = (*PgxEntityRepository)(nil)

const entitySelectColumns = `
	entity_id, organization_id, entity_type, entity_name, entity_code, smart_code, status, metadata,
	created_at, created_by, last_updated_at, last_updated_by
`

const dynamicFieldInsertQuery = `
	INSERT INTO core_dynamic_data (
		field_id, organization_id, entity_id, field_name, field_type,
		field_value_text, field_value_number, field_value_boolean, field_value_date, field_value_json,
		smart_code, created_at, created_by, last_updated_at, last_updated_by
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (organization_id, entity_id, field_name)
	DO UPDATE SET
		field_type = EXCLUDED.field_type,
		field_value_text = EXCLUDED.field_value_text,
		field_value_number = EXCLUDED.field_value_number,
		field_value_boolean = EXCLUDED.field_value_boolean,
		field_value_date = EXCLUDED.field_value_date,
		field_value_json = EXCLUDED.field_value_json,
		smart_code = EXCLUDED.smart_code,
		last_updated_at = EXCLUDED.last_updated_at,
		last_updated_by = EXCLUDED.last_updated_by;
`

func queueDynamicField(batch *pgx.Batch, m models.DynamicField) {
	batch.Queue(dynamicFieldInsertQuery,
		m.FieldID,
		m.OrganizationID,
		m.EntityID,
		m.FieldName,
		m.FieldType,
		m.ValueText,
		m.ValueNumber,
		m.ValueBoolean,
		m.ValueDate,
		m.ValueJSON,
		m.SmartCode,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
}

// SaveEntity inserts the entity row, its dynamic fields and its relationship
// edges within a single database transaction.
func (r *PgxEntityRepository) SaveEntity(ctx context.Context, entity domain.Entity, fields []domain.DynamicField, relationships []domain.Relationship) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	modelEntity := mapping.ToModelEntity(entity)
	entityQuery := `
		INSERT INTO core_entities (` + entitySelectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err = tx.Exec(ctx, entityQuery,
		modelEntity.EntityID,
		modelEntity.OrganizationID,
		modelEntity.EntityType,
		modelEntity.EntityName,
		modelEntity.EntityCode,
		modelEntity.SmartCode,
		modelEntity.Status,
		modelEntity.Metadata,
		modelEntity.CreatedAt,
		modelEntity.CreatedBy,
		modelEntity.LastUpdatedAt,
		modelEntity.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation: entity ID or (org, type, code)
			return apperrors.NewAppError(409, "entity code already in use for this type", apperrors.ErrDuplicate)
		}
		return storageError("failed to insert entity "+modelEntity.EntityID, err)
	}

	batch := &pgx.Batch{}
	for _, f := range fields {
		queueDynamicField(batch, mapping.ToModelDynamicField(f))
	}
	relQuery := `
		INSERT INTO core_relationships (
			relationship_id, organization_id, from_entity_id, to_entity_id,
			relationship_type, smart_code, relationship_data, created_at, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	for _, rel := range relationships {
		m := mapping.ToModelRelationship(rel)
		batch.Queue(relQuery,
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
	}
	if batch.Len() > 0 {
		br := tx.SendBatch(ctx, batch)
		if err := br.Close(); err != nil {
			return storageError("failed to insert dynamic fields for entity "+modelEntity.EntityID, err)
		}
	}

	return r.Commit(ctx, tx)
}

func scanEntityRow(row pgx.Row) (models.Entity, error) {
	var m models.Entity
	err := row.Scan(
		&m.EntityID,
		&m.OrganizationID,
		&m.EntityType,
		&m.EntityName,
		&m.EntityCode,
		&m.SmartCode,
		&m.Status,
		&m.Metadata,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxEntityRepository) FindEntityByID(ctx context.Context, organizationID, entityID string) (*domain.Entity, error) {
	query := `
		SELECT ` + entitySelectColumns + `
		FROM core_entities
		WHERE organization_id = $1 AND entity_id = $2;
	`
	m, err := scanEntityRow(r.Pool.QueryRow(ctx, query, organizationID, entityID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, storageError("failed to find entity "+entityID, err)
	}
	entity := mapping.ToDomainEntity(m)
	return &entity, nil
}

func (r *PgxEntityRepository) ListEntities(ctx context.Context, organizationID string, filter portsrepo.EntityFilter, limit, offset int) ([]domain.Entity, error) {
	query := `
		SELECT ` + entitySelectColumns + `
		FROM core_entities
		WHERE organization_id = $1
	`
	args := []any{organizationID}

	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
		query += ` AND entity_type = $` + strconv.Itoa(len(args))
	}
	if filter.EntityCode != "" {
		args = append(args, filter.EntityCode)
		query += ` AND entity_code = $` + strconv.Itoa(len(args))
	}
	statuses := filter.Status
	if len(statuses) == 0 {
		// Soft-deleted and archived rows stay out of lists unless asked for.
		statuses = []domain.EntityStatus{domain.EntityActive}
	}
	args = append(args, statuses)
	query += ` AND status = ANY($` + strconv.Itoa(len(args)) + `)`

	query += ` ORDER BY created_at DESC, entity_id DESC`
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))
	args = append(args, offset)
	query += ` OFFSET $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storageError("failed to query entities for organization "+organizationID, err)
	}
	defer rows.Close()

	modelEntities := []models.Entity{}
	for rows.Next() {
		m, err := scanEntityRow(rows)
		if err != nil {
			return nil, storageError("failed to scan entity row", err)
		}
		modelEntities = append(modelEntities, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("error iterating entity rows for organization "+organizationID, err)
	}

	entities := make([]domain.Entity, len(modelEntities))
	for i, m := range modelEntities {
		entities[i] = mapping.ToDomainEntity(m)
	}
	return entities, nil
}

// UpdateEntity rewrites the mutable header columns of an entity.
func (r *PgxEntityRepository) UpdateEntity(ctx context.Context, entity domain.Entity) error {
	m := mapping.ToModelEntity(entity)
	query := `
		UPDATE core_entities
		SET entity_name = $1, entity_code = $2, smart_code = $3, status = $4, metadata = $5,
		    last_updated_at = $6, last_updated_by = $7
		WHERE organization_id = $8 AND entity_id = $9;
	`
	result, err := r.Pool.Exec(ctx, query,
		m.EntityName,
		m.EntityCode,
		m.SmartCode,
		m.Status,
		m.Metadata,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.OrganizationID,
		m.EntityID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.NewAppError(409, "entity code already in use for this type", apperrors.ErrDuplicate)
		}
		return storageError("failed to update entity "+m.EntityID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxEntityRepository) UpsertDynamicFields(ctx context.Context, fields []domain.DynamicField) error {
	if len(fields) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, f := range fields {
		queueDynamicField(batch, mapping.ToModelDynamicField(f))
	}
	br := r.Pool.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return storageError("failed to upsert dynamic fields", err)
	}
	return nil
}

func (r *PgxEntityRepository) FindDynamicFieldsByEntityIDs(ctx context.Context, organizationID string, entityIDs []string) (map[string][]domain.DynamicField, error) {
	result := make(map[string][]domain.DynamicField, len(entityIDs))
	if len(entityIDs) == 0 {
		return result, nil
	}
	query := `
		SELECT field_id, organization_id, entity_id, field_name, field_type,
		       field_value_text, field_value_number, field_value_boolean, field_value_date, field_value_json,
		       smart_code, created_at, created_by, last_updated_at, last_updated_by
		FROM core_dynamic_data
		WHERE organization_id = $1 AND entity_id = ANY($2)
		ORDER BY entity_id, field_name;
	`
	rows, err := r.Pool.Query(ctx, query, organizationID, entityIDs)
	if err != nil {
		return nil, storageError("failed to query dynamic fields", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.DynamicField
		err := rows.Scan(
			&m.FieldID,
			&m.OrganizationID,
			&m.EntityID,
			&m.FieldName,
			&m.FieldType,
			&m.ValueText,
			&m.ValueNumber,
			&m.ValueBoolean,
			&m.ValueDate,
			&m.ValueJSON,
			&m.SmartCode,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, storageError("failed to scan dynamic field row", err)
		}
		result[m.EntityID] = append(result[m.EntityID], mapping.ToDomainDynamicField(m))
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("error iterating dynamic field rows", err)
	}
	return result, nil
}

func (r *PgxEntityRepository) SoftDeleteEntity(ctx context.Context, organizationID, entityID string, status domain.EntityStatus, reason, userID string, at time.Time) error {
	// The deletion reason rides along in metadata so the row explains itself.
	query := `
		UPDATE core_entities
		SET status = $1,
		    metadata = CASE
			WHEN $2 = '' THEN metadata
			ELSE COALESCE(metadata, '{}'::jsonb) || jsonb_build_object('status_reason', $2::text)
		    END,
		    last_updated_at = $3, last_updated_by = $4
		WHERE organization_id = $5 AND entity_id = $6;
	`
	result, err := r.Pool.Exec(ctx, query, status, reason, at, userID, organizationID, entityID)
	if err != nil {
		return storageError("failed to soft delete entity "+entityID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// HardDeleteEntity removes the entity and its owned dynamic fields inside one
// database transaction. It refuses while transaction lines still reference the
// entity; those rows are the audit trail.
func (r *PgxEntityRepository) HardDeleteEntity(ctx context.Context, organizationID, entityID string, cascade bool) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var refs int64
	refQuery := `
		SELECT count(*)
		FROM universal_transaction_lines
		WHERE organization_id = $1 AND line_entity_id = $2;
	`
	if err := tx.QueryRow(ctx, refQuery, organizationID, entityID).Scan(&refs); err != nil {
		return storageError("failed to count line references for entity "+entityID, err)
	}
	if refs > 0 {
		return apperrors.NewAppError(409, "entity is referenced by transaction lines", apperrors.ErrConflict)
	}

	if cascade {
		relDelete := `
			DELETE FROM core_relationships
			WHERE organization_id = $1 AND (from_entity_id = $2 OR to_entity_id = $2);
		`
		if _, err := tx.Exec(ctx, relDelete, organizationID, entityID); err != nil {
			return storageError("failed to delete relationships for entity "+entityID, err)
		}
	}

	fieldDelete := `DELETE FROM core_dynamic_data WHERE organization_id = $1 AND entity_id = $2;`
	if _, err := tx.Exec(ctx, fieldDelete, organizationID, entityID); err != nil {
		return storageError("failed to delete dynamic fields for entity "+entityID, err)
	}

	entityDelete := `DELETE FROM core_entities WHERE organization_id = $1 AND entity_id = $2;`
	result, err := tx.Exec(ctx, entityDelete, organizationID, entityID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation: edges still point here
			return apperrors.NewAppError(409, "entity is referenced by relationships", apperrors.ErrConflict)
		}
		return storageError("failed to delete entity "+entityID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return r.Commit(ctx, tx)
}

func (r *PgxEntityRepository) CountTransactionLineRefs(ctx context.Context, organizationID, entityID string) (int64, error) {
	query := `
		SELECT count(*)
		FROM universal_transaction_lines
		WHERE organization_id = $1 AND line_entity_id = $2;
	`
	var count int64
	if err := r.Pool.QueryRow(ctx, query, organizationID, entityID).Scan(&count); err != nil {
		return 0, storageError("failed to count line references for entity "+entityID, err)
	}
	return count, nil
}

// FindEntityOrgIDs resolves entity ids to their owning organization without
// tenant scoping, so callers can flag edges that escape the tenant boundary.
func (r *PgxEntityRepository) FindEntityOrgIDs(ctx context.Context, entityIDs []string) (map[string]string, error) {
	result := make(map[string]string, len(entityIDs))
	if len(entityIDs) == 0 {
		return result, nil
	}
	query := `SELECT entity_id, organization_id FROM core_entities WHERE entity_id = ANY($1);`
	rows, err := r.Pool.Query(ctx, query, entityIDs)
	if err != nil {
		return nil, storageError("failed to resolve entity organizations", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entityID, orgID string
		if err := rows.Scan(&entityID, &orgID); err != nil {
			return nil, storageError("failed to scan entity organization row", err)
		}
		result[entityID] = orgID
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("error iterating entity organization rows", err)
	}
	return result, nil
}
