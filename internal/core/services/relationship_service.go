package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/herafoundry/hera_data_engine/internal/apperrors"
	"github.com/herafoundry/hera_data_engine/internal/core/domain"
	portsrepo "github.com/herafoundry/hera_data_engine/internal/core/ports/repositories"
	portssvc "github.com/herafoundry/hera_data_engine/internal/core/ports/services"
	"github.com/herafoundry/hera_data_engine/internal/dto"
	"github.com/herafoundry/hera_data_engine/internal/utils/smartcode"
)

var (
	ErrRelationshipFilterMissing = errors.New("relationship query requires from_entity_id or to_entity_id")
	ErrSelfRelationship          = errors.New("relationship endpoints must differ")
)

// relationshipService owns the append-only edge log. Exclusive relationship
// types supersede by appending, never by deleting; history stays queryable.
type relationshipService struct {
	BaseService
	relRepo      portsrepo.RelationshipRepositoryFacade
	entityRepo   portsrepo.EntityRepositoryFacade
	smartCodeSvc portssvc.SmartCodeSvcFacade
}

// NewRelationshipService creates a new RelationshipService.
func NewRelationshipService(relRepo portsrepo.RelationshipRepositoryFacade, entityRepo portsrepo.EntityRepositoryFacade, smartCodeSvc portssvc.SmartCodeSvcFacade, orgSvc portssvc.OrganizationSvcFacade) portssvc.RelationshipSvcFacade {
	return &relationshipService{
		BaseService:  BaseService{OrgAuthorizer: orgSvc},
		relRepo:      relRepo,
		entityRepo:   entityRepo,
		smartCodeSvc: smartCodeSvc,
	}
}

// Ensure relationshipService implements the portssvc.RelationshipSvcFacade interface
var _ portssvc.RelationshipSvcFacade = (*relationshipService)(nil)

func (s *relationshipService) UpsertRelationship(ctx context.Context, req dto.UpsertRelationshipRequest, actorUserID string) (string, []string, error) {
	if err := s.AuthorizeOrg(ctx, actorUserID, req.OrganizationID, domain.RoleMember); err != nil {
		return "", nil, err
	}
	if req.FromEntityID == req.ToEntityID {
		return "", nil, ErrSelfRelationship
	}

	parsed, err := smartcode.Parse(req.SmartCode)
	if err != nil {
		return "", nil, err
	}

	// Both endpoints must exist and belong to the caller's organization.
	orgIDs, err := s.entityRepo.FindEntityOrgIDs(ctx, []string{req.FromEntityID, req.ToEntityID})
	if err != nil {
		return "", nil, err
	}
	for _, endpointID := range []string{req.FromEntityID, req.ToEntityID} {
		owner, found := orgIDs[endpointID]
		if !found {
			return "", nil, fmt.Errorf("relationship endpoint %s: %w", endpointID, apperrors.ErrNotFound)
		}
		if owner != req.OrganizationID {
			return "", nil, fmt.Errorf("%w: entity %s", ErrCrossTenantEdge, endpointID)
		}
	}

	var warnings []string
	if s.smartCodeSvc.IsExclusiveRelationship(ctx, req.RelationshipType) {
		existing, err := s.relRepo.ListRelationships(ctx, req.OrganizationID, portsrepo.RelationshipFilter{
			FromEntityID:     req.FromEntityID,
			RelationshipType: req.RelationshipType,
		})
		if err != nil {
			return "", nil, err
		}
		if len(existing) > 0 {
			warnings = append(warnings, fmt.Sprintf("superseded %s edge %s; prior edges remain as history",
				req.RelationshipType, existing[0].RelationshipID))
		}
	}

	rel := domain.Relationship{
		RelationshipID:   uuid.NewString(),
		OrganizationID:   req.OrganizationID,
		FromEntityID:     req.FromEntityID,
		ToEntityID:       req.ToEntityID,
		RelationshipType: req.RelationshipType,
		SmartCode:        parsed.Raw,
		Data:             req.Metadata,
		CreatedAt:        time.Now(),
		CreatedBy:        actorUserID,
	}
	if err := s.relRepo.SaveRelationship(ctx, rel); err != nil {
		s.LogError(ctx, err, "Failed to save relationship",
			slog.String("organization_id", req.OrganizationID),
			slog.String("relationship_type", req.RelationshipType))
		return "", nil, err
	}

	s.LogInfo(ctx, "Relationship upserted",
		slog.String("relationship_id", rel.RelationshipID),
		slog.String("relationship_type", rel.RelationshipType),
		slog.String("from_entity_id", rel.FromEntityID),
		slog.String("to_entity_id", rel.ToEntityID))
	return rel.RelationshipID, warnings, nil
}

// markCurrentEdges sets the current projection on an edge slice: for exclusive
// relationship types only the newest edge per (from, type) is current, for
// every other type each edge is.
func markCurrentEdges(ctx context.Context, smartCodeSvc portssvc.SmartCodeSvcFacade, edges []domain.Relationship) {
	newest := make(map[string]int)
	for i := range edges {
		if !smartCodeSvc.IsExclusiveRelationship(ctx, edges[i].RelationshipType) {
			edges[i].IsCurrent = true
			continue
		}
		key := edges[i].FromEntityID + "|" + edges[i].RelationshipType
		if j, ok := newest[key]; !ok || edges[i].CreatedAt.After(edges[j].CreatedAt) {
			newest[key] = i
		}
	}
	for _, i := range newest {
		edges[i].IsCurrent = true
	}
}

// QueryRelationships returns edges newest-first. Edges whose far endpoint
// resolves outside the organization are flagged, not hidden: hiding them would
// mask an isolation breach.
func (s *relationshipService) QueryRelationships(ctx context.Context, params dto.QueryRelationshipsParams, actorUserID string) ([]domain.Relationship, error) {
	if err := s.AuthorizeOrg(ctx, actorUserID, params.OrganizationID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	if params.FromEntityID == "" && params.ToEntityID == "" {
		return nil, ErrRelationshipFilterMissing
	}

	edges, err := s.relRepo.ListRelationships(ctx, params.OrganizationID, portsrepo.RelationshipFilter{
		FromEntityID:     params.FromEntityID,
		ToEntityID:       params.ToEntityID,
		RelationshipType: params.RelationshipType,
	})
	if err != nil {
		return nil, err
	}
	if len(edges) == 0 {
		return edges, nil
	}

	endpointIDs := make([]string, 0, len(edges)*2)
	for _, e := range edges {
		endpointIDs = append(endpointIDs, e.FromEntityID, e.ToEntityID)
	}
	orgIDs, err := s.entityRepo.FindEntityOrgIDs(ctx, endpointIDs)
	if err != nil {
		return nil, err
	}
	for i := range edges {
		fromOwner, fromFound := orgIDs[edges[i].FromEntityID]
		toOwner, toFound := orgIDs[edges[i].ToEntityID]
		edges[i].CrossTenantViolation = (fromFound && fromOwner != params.OrganizationID) ||
			(toFound && toOwner != params.OrganizationID)
	}
	markCurrentEdges(ctx, s.smartCodeSvc, edges)
	return edges, nil
}
