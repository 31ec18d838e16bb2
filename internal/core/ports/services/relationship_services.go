package services

import (
	"context"

	"github.com/herafoundry/hera_data_engine/internal/core/domain"
	"github.com/herafoundry/hera_data_engine/internal/dto"
)

// RelationshipSvcFacade owns the append-only edge log between entities.
type RelationshipSvcFacade interface {
	// UpsertRelationship appends an edge; for exclusive relationship types the
	// new edge supersedes the prior one without deleting it.
	UpsertRelationship(ctx context.Context, req dto.UpsertRelationshipRequest, actorUserID string) (string, []string, error)

	// QueryRelationships returns edges newest-first; edges whose far endpoint
	// belongs to a foreign organization come back flagged, not hidden.
	QueryRelationships(ctx context.Context, params dto.QueryRelationshipsParams, actorUserID string) ([]domain.Relationship, error)
}
