package services

import (
	"context"

	"github.com/herafoundry/hera_data_engine/internal/core/domain"
	"github.com/herafoundry/hera_data_engine/internal/dto"
)

// EntitySvcFacade implements the entity store's CREATE/READ/UPDATE/DELETE
// operations, composing dynamic fields and relationships into a single view.
type EntitySvcFacade interface {
	// CreateEntity persists entity + dynamic fields + relationship edges as one
	// atomic unit. Returns smart-code alignment warnings alongside the entity.
	CreateEntity(ctx context.Context, req dto.EntityActionRequest, actorUserID string) (*domain.Entity, []string, error)

	GetEntityByID(ctx context.Context, organizationID, entityID string, opts dto.EntityOptions, actorUserID string) (*domain.Entity, error)
	ListEntities(ctx context.Context, req dto.EntityActionRequest, actorUserID string) ([]domain.Entity, error)

	// UpdateEntity merge-patches header fields and only the supplied dynamic
	// field names; omitted fields are untouched.
	UpdateEntity(ctx context.Context, req dto.EntityActionRequest, actorUserID string) (*domain.Entity, error)

	// DeleteEntity soft-deletes by default; hard delete fails while transaction
	// lines still reference the entity.
	DeleteEntity(ctx context.Context, req dto.EntityActionRequest, actorUserID string) error
}
