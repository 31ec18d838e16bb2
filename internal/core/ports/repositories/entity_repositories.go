package repositories

import (
	"context"
	"time"

	"github.com/herafoundry/hera_data_engine/internal/core/domain"
)

// EntityFilter narrows entity list reads. Zero values mean "no filter";
// Status defaults to active-only at the repository when empty.
type EntityFilter struct {
	EntityType string
	EntityCode string
	Status     []domain.EntityStatus
}

// EntityRepositoryFacade defines persistence operations for entities and the
// dynamic fields they own.
type EntityRepositoryFacade interface {
	// SaveEntity persists the entity row, its dynamic fields and its relationship
	// edges as one atomic unit.
	SaveEntity(ctx context.Context, entity domain.Entity, fields []domain.DynamicField, relationships []domain.Relationship) error

	FindEntityByID(ctx context.Context, organizationID, entityID string) (*domain.Entity, error)
	ListEntities(ctx context.Context, organizationID string, filter EntityFilter, limit, offset int) ([]domain.Entity, error)

	// UpdateEntity rewrites the mutable header columns; dynamic fields go through
	// UpsertDynamicFields so omitted names stay untouched.
	UpdateEntity(ctx context.Context, entity domain.Entity) error
	UpsertDynamicFields(ctx context.Context, fields []domain.DynamicField) error
	FindDynamicFieldsByEntityIDs(ctx context.Context, organizationID string, entityIDs []string) (map[string][]domain.DynamicField, error)

	SoftDeleteEntity(ctx context.Context, organizationID, entityID string, status domain.EntityStatus, reason, userID string, at time.Time) error
	// HardDeleteEntity removes the entity and its owned dynamic fields; with
	// cascade it also removes edges touching the entity. Refuses with ErrConflict
	// while any transaction line references the entity.
	HardDeleteEntity(ctx context.Context, organizationID, entityID string, cascade bool) error
	CountTransactionLineRefs(ctx context.Context, organizationID, entityID string) (int64, error)

	// FindEntityOrgIDs resolves entity ids to owning organization ids without
	// tenant scoping. Used only to flag cross-tenant edges, never to read data.
	FindEntityOrgIDs(ctx context.Context, entityIDs []string) (map[string]string, error)
}
