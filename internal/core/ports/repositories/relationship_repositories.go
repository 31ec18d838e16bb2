package repositories

import (
	"context"

	"github.com/herafoundry/hera_data_engine/internal/core/domain"
)

// RelationshipFilter narrows relationship queries. At least one of FromEntityID
// or ToEntityID must be set.
type RelationshipFilter struct {
	FromEntityID     string
	ToEntityID       string
	RelationshipType string
}

// RelationshipRepositoryFacade defines persistence operations for the
// append-only edge log.
type RelationshipRepositoryFacade interface {
	SaveRelationship(ctx context.Context, rel domain.Relationship) error
	// ListRelationships returns edges newest-first.
	ListRelationships(ctx context.Context, organizationID string, filter RelationshipFilter) ([]domain.Relationship, error)
	FindRelationshipsByEntityIDs(ctx context.Context, organizationID string, entityIDs []string) (map[string][]domain.Relationship, error)
	DeleteRelationshipsByEntityID(ctx context.Context, organizationID, entityID string) error
}
