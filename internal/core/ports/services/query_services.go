package services

import (
	"context"

	"github.com/herafoundry/hera_data_engine/internal/core/domain"
)

// QuerySvcFacade is the read-side composition layer over the entity,
// relationship and transaction stores. No storage of its own; same isolation
// guarantees as every store.
type QuerySvcFacade interface {
	// EntitiesWithFieldValue returns entities of the organization whose dynamic
	// field fieldName currently holds the given value.
	EntitiesWithFieldValue(ctx context.Context, organizationID, entityType, fieldName string, value any, actorUserID string) ([]domain.Entity, error)

	// TransactionsBySourceEntityField returns transactions whose source entity
	// carries the given dynamic field value.
	TransactionsBySourceEntityField(ctx context.Context, organizationID, fieldName string, value any, actorUserID string) ([]domain.Transaction, error)

	// EntityActivity composes one entity with its current relationships and the
	// most recent transactions touching it.
	EntityActivity(ctx context.Context, organizationID, entityID string, limit int, actorUserID string) (*domain.Entity, []domain.Relationship, []domain.Transaction, error)
}
