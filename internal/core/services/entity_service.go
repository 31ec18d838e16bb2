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
	"github.com/herafoundry/hera_data_engine/internal/utils/dynamicfields"
	"github.com/herafoundry/hera_data_engine/internal/utils/smartcode"
)

var (
	ErrEntityTypeMissing     = errors.New("entity_type is required")
	ErrEntityNameMissing     = errors.New("entity_name is required")
	ErrEntityPayloadMissing  = errors.New("entity payload is required")
	ErrEntityIDMissing       = errors.New("entity id is required")
	ErrRequiredFieldMissing  = errors.New("smart code family requires dynamic fields that are absent")
	ErrCrossTenantEdge       = errors.New("relationship endpoints must belong to the same organization")
	ErrEntityDeleted         = errors.New("entity is deleted")
	ErrEntityReferenced      = errors.New("entity is referenced by transaction lines")
)

// entityService implements the entity store: the single write path for entity
// headers, their dynamic fields and their relationship edges.
type entityService struct {
	BaseService
	entityRepo   portsrepo.EntityRepositoryFacade
	relRepo      portsrepo.RelationshipRepositoryFacade
	smartCodeSvc portssvc.SmartCodeSvcFacade
	maxReadLimit int
}

// NewEntityService creates a new EntityService.
func NewEntityService(entityRepo portsrepo.EntityRepositoryFacade, relRepo portsrepo.RelationshipRepositoryFacade, smartCodeSvc portssvc.SmartCodeSvcFacade, orgSvc portssvc.OrganizationSvcFacade, maxReadLimit int) portssvc.EntitySvcFacade {
	if maxReadLimit <= 0 {
		maxReadLimit = 100
	}
	return &entityService{
		BaseService:  BaseService{OrgAuthorizer: orgSvc},
		entityRepo:   entityRepo,
		relRepo:      relRepo,
		smartCodeSvc: smartCodeSvc,
		maxReadLimit: maxReadLimit,
	}
}

// Ensure entityService implements the portssvc.EntitySvcFacade interface
var _ portssvc.EntitySvcFacade = (*entityService)(nil)

// expandDynamicInputs converts wire dynamic-field inputs into typed domain
// fields, defaulting each field's smart code to the owning entity's.
func expandDynamicInputs(organizationID, entityID, entitySmartCode, userID string, inputs map[string]dto.DynamicFieldInput, now time.Time) ([]domain.DynamicField, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	fields := make([]domain.DynamicField, 0, len(inputs))
	for name, in := range inputs {
		value, err := dynamicfields.Expand(domain.FieldType(in.FieldType), in.RawValue())
		if err != nil {
			return nil, fmt.Errorf("dynamic field %q: %w", name, err)
		}
		fieldSmartCode := in.SmartCode
		if fieldSmartCode == "" {
			fieldSmartCode = entitySmartCode
		}
		fields = append(fields, domain.DynamicField{
			FieldID:        uuid.NewString(),
			OrganizationID: organizationID,
			EntityID:       entityID,
			FieldName:      name,
			Value:          value,
			SmartCode:      fieldSmartCode,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		})
	}
	return fields, nil
}

// checkEdgeTenancy rejects edges whose target entity belongs to a different
// organization. Isolation is absolute on the write path.
func (s *entityService) checkEdgeTenancy(ctx context.Context, organizationID string, targetIDs []string) error {
	if len(targetIDs) == 0 {
		return nil
	}
	orgIDs, err := s.entityRepo.FindEntityOrgIDs(ctx, targetIDs)
	if err != nil {
		return err
	}
	for _, id := range targetIDs {
		owner, found := orgIDs[id]
		if !found {
			return fmt.Errorf("relationship target %s: %w", id, apperrors.ErrNotFound)
		}
		if owner != organizationID {
			return fmt.Errorf("%w: entity %s", ErrCrossTenantEdge, id)
		}
	}
	return nil
}

func (s *entityService) CreateEntity(ctx context.Context, req dto.EntityActionRequest, actorUserID string) (*domain.Entity, []string, error) {
	if err := s.AuthorizeOrg(ctx, actorUserID, req.OrganizationID, domain.RoleMember); err != nil {
		return nil, nil, err
	}
	if req.Entity == nil {
		return nil, nil, ErrEntityPayloadMissing
	}
	if req.Entity.EntityType == "" {
		return nil, nil, ErrEntityTypeMissing
	}
	if req.Entity.EntityName == "" {
		return nil, nil, ErrEntityNameMissing
	}

	parsed, err := smartcode.Parse(req.Entity.SmartCode)
	if err != nil {
		return nil, nil, err
	}
	warnings := smartcode.Align(parsed, req.Entity.EntityType)

	behavior, err := s.smartCodeSvc.Behavior(ctx, parsed.Raw)
	if err != nil {
		return nil, nil, err
	}
	for _, required := range behavior.RequiredFields {
		if _, present := req.Dynamic[required]; !present {
			return nil, nil, fmt.Errorf("%w: %s", ErrRequiredFieldMissing, required)
		}
	}

	now := time.Now()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actorUserID,
		LastUpdatedAt: now,
		LastUpdatedBy: actorUserID,
	}
	entity := domain.Entity{
		EntityID:       uuid.NewString(),
		OrganizationID: req.OrganizationID,
		EntityType:     req.Entity.EntityType,
		EntityName:     req.Entity.EntityName,
		EntityCode:     req.Entity.EntityCode,
		SmartCode:      parsed.Raw,
		Status:         domain.EntityActive,
		Metadata:       req.Entity.Metadata,
		AuditFields:    audit,
	}

	fields, err := expandDynamicInputs(req.OrganizationID, entity.EntityID, parsed.Raw, actorUserID, req.Dynamic, now)
	if err != nil {
		return nil, nil, err
	}

	var edges []domain.Relationship
	if len(req.Relationships) > 0 {
		targetIDs := make([]string, len(req.Relationships))
		for i, rel := range req.Relationships {
			targetIDs[i] = rel.ToEntityID
		}
		if err := s.checkEdgeTenancy(ctx, req.OrganizationID, targetIDs); err != nil {
			return nil, nil, err
		}
		edges = make([]domain.Relationship, len(req.Relationships))
		for i, rel := range req.Relationships {
			relSmartCode := rel.SmartCode
			if relSmartCode == "" {
				relSmartCode = parsed.Raw
			}
			edges[i] = domain.Relationship{
				RelationshipID:   uuid.NewString(),
				OrganizationID:   req.OrganizationID,
				FromEntityID:     entity.EntityID,
				ToEntityID:       rel.ToEntityID,
				RelationshipType: rel.RelationshipType,
				SmartCode:        relSmartCode,
				Data:             rel.Data,
				CreatedAt:        now,
				CreatedBy:        actorUserID,
			}
		}
	}

	if err := s.entityRepo.SaveEntity(ctx, entity, fields, edges); err != nil {
		s.LogError(ctx, err, "Failed to create entity",
			slog.String("organization_id", req.OrganizationID), slog.String("entity_type", entity.EntityType))
		return nil, nil, err
	}

	entity.DynamicFields = dynamicfields.Flatten(fields)
	if len(edges) > 0 {
		markCurrentEdges(ctx, s.smartCodeSvc, edges)
		entity.Relationships = groupRelationshipsByType(edges)
	}

	s.LogInfo(ctx, "Entity created",
		slog.String("entity_id", entity.EntityID),
		slog.String("organization_id", entity.OrganizationID),
		slog.String("entity_type", entity.EntityType))
	return &entity, warnings, nil
}

func groupRelationshipsByType(edges []domain.Relationship) map[string][]domain.Relationship {
	grouped := make(map[string][]domain.Relationship)
	for _, e := range edges {
		grouped[e.RelationshipType] = append(grouped[e.RelationshipType], e)
	}
	return grouped
}

// flagCrossTenantEdges marks edges whose far endpoint resolves outside the
// organization. Reads report violations; they never follow the edge.
func (s *entityService) flagCrossTenantEdges(ctx context.Context, organizationID string, edges []domain.Relationship) ([]domain.Relationship, error) {
	if len(edges) == 0 {
		return edges, nil
	}
	targetIDs := make([]string, len(edges))
	for i, e := range edges {
		targetIDs[i] = e.ToEntityID
	}
	orgIDs, err := s.entityRepo.FindEntityOrgIDs(ctx, targetIDs)
	if err != nil {
		return nil, err
	}
	for i := range edges {
		owner, found := orgIDs[edges[i].ToEntityID]
		edges[i].CrossTenantViolation = found && owner != organizationID
	}
	return edges, nil
}

func (s *entityService) composeEntity(ctx context.Context, entity *domain.Entity, opts dto.EntityOptions) error {
	if opts.IncludeDynamic {
		fieldsByEntity, err := s.entityRepo.FindDynamicFieldsByEntityIDs(ctx, entity.OrganizationID, []string{entity.EntityID})
		if err != nil {
			return err
		}
		entity.DynamicFields = dynamicfields.Flatten(fieldsByEntity[entity.EntityID])
	}
	if opts.IncludeRelationships {
		relsByEntity, err := s.relRepo.FindRelationshipsByEntityIDs(ctx, entity.OrganizationID, []string{entity.EntityID})
		if err != nil {
			return err
		}
		edges, err := s.flagCrossTenantEdges(ctx, entity.OrganizationID, relsByEntity[entity.EntityID])
		if err != nil {
			return err
		}
		markCurrentEdges(ctx, s.smartCodeSvc, edges)
		entity.Relationships = groupRelationshipsByType(edges)
	}
	return nil
}

func (s *entityService) GetEntityByID(ctx context.Context, organizationID, entityID string, opts dto.EntityOptions, actorUserID string) (*domain.Entity, error) {
	if err := s.AuthorizeOrg(ctx, actorUserID, organizationID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	entity, err := s.entityRepo.FindEntityByID(ctx, organizationID, entityID)
	if err != nil {
		return nil, err
	}
	if err := s.composeEntity(ctx, entity, opts); err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *entityService) ListEntities(ctx context.Context, req dto.EntityActionRequest, actorUserID string) ([]domain.Entity, error) {
	if err := s.AuthorizeOrg(ctx, actorUserID, req.OrganizationID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	opts := dto.EntityOptions{}
	if req.Options != nil {
		opts = *req.Options
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = s.maxReadLimit
	}
	if limit > s.maxReadLimit {
		limit = s.maxReadLimit
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	filter := portsrepo.EntityFilter{}
	if req.Entity != nil {
		filter.EntityType = req.Entity.EntityType
		filter.EntityCode = req.Entity.EntityCode
	}
	if opts.StatusFilter != "" {
		filter.Status = []domain.EntityStatus{domain.EntityStatus(opts.StatusFilter)}
	}

	entities, err := s.entityRepo.ListEntities(ctx, req.OrganizationID, filter, limit, offset)
	if err != nil {
		return nil, err
	}

	if (opts.IncludeDynamic || opts.IncludeRelationships) && len(entities) > 0 {
		entityIDs := make([]string, len(entities))
		for i := range entities {
			entityIDs[i] = entities[i].EntityID
		}
		if opts.IncludeDynamic {
			fieldsByEntity, err := s.entityRepo.FindDynamicFieldsByEntityIDs(ctx, req.OrganizationID, entityIDs)
			if err != nil {
				return nil, err
			}
			for i := range entities {
				entities[i].DynamicFields = dynamicfields.Flatten(fieldsByEntity[entities[i].EntityID])
			}
		}
		if opts.IncludeRelationships {
			relsByEntity, err := s.relRepo.FindRelationshipsByEntityIDs(ctx, req.OrganizationID, entityIDs)
			if err != nil {
				return nil, err
			}
			for i := range entities {
				edges, err := s.flagCrossTenantEdges(ctx, req.OrganizationID, relsByEntity[entities[i].EntityID])
				if err != nil {
					return nil, err
				}
				markCurrentEdges(ctx, s.smartCodeSvc, edges)
				entities[i].Relationships = groupRelationshipsByType(edges)
			}
		}
	}
	return entities, nil
}

// UpdateEntity merge-patches header fields and only the supplied dynamic
// fields; omitted dynamic fields stay untouched.
func (s *entityService) UpdateEntity(ctx context.Context, req dto.EntityActionRequest, actorUserID string) (*domain.Entity, error) {
	if err := s.AuthorizeOrg(ctx, actorUserID, req.OrganizationID, domain.RoleMember); err != nil {
		return nil, err
	}
	if req.Entity == nil || req.Entity.EntityID == "" {
		return nil, ErrEntityIDMissing
	}

	existing, err := s.entityRepo.FindEntityByID(ctx, req.OrganizationID, req.Entity.EntityID)
	if err != nil {
		return nil, err
	}
	if existing.Status == domain.EntityDeleted {
		return nil, fmt.Errorf("%w: %s", ErrEntityDeleted, existing.EntityID)
	}

	if req.Entity.EntityName != "" {
		existing.EntityName = req.Entity.EntityName
	}
	if req.Entity.EntityCode != "" {
		existing.EntityCode = req.Entity.EntityCode
	}
	if req.Entity.SmartCode != "" {
		parsed, err := smartcode.Parse(req.Entity.SmartCode)
		if err != nil {
			return nil, err
		}
		existing.SmartCode = parsed.Raw
	}
	if req.Entity.Status != "" {
		switch domain.EntityStatus(req.Entity.Status) {
		case domain.EntityActive, domain.EntityArchived:
			existing.Status = domain.EntityStatus(req.Entity.Status)
		default:
			return nil, fmt.Errorf("%w: status %q is not reachable through update", apperrors.ErrValidation, req.Entity.Status)
		}
	}
	if len(req.Entity.Metadata) > 0 {
		existing.Metadata = req.Entity.Metadata
	}

	now := time.Now()
	existing.LastUpdatedAt = now
	existing.LastUpdatedBy = actorUserID

	if err := s.entityRepo.UpdateEntity(ctx, *existing); err != nil {
		s.LogError(ctx, err, "Failed to update entity", slog.String("entity_id", existing.EntityID))
		return nil, err
	}

	if len(req.Dynamic) > 0 {
		fields, err := expandDynamicInputs(req.OrganizationID, existing.EntityID, existing.SmartCode, actorUserID, req.Dynamic, now)
		if err != nil {
			return nil, err
		}
		if err := s.entityRepo.UpsertDynamicFields(ctx, fields); err != nil {
			s.LogError(ctx, err, "Failed to upsert dynamic fields", slog.String("entity_id", existing.EntityID))
			return nil, err
		}
	}

	if err := s.composeEntity(ctx, existing, dto.EntityOptions{IncludeDynamic: true}); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Entity updated", slog.String("entity_id", existing.EntityID))
	return existing, nil
}

// DeleteEntity soft-deletes by default, keeping the row for audit. Hard delete
// is admin-only and refuses while transaction lines reference the entity.
func (s *entityService) DeleteEntity(ctx context.Context, req dto.EntityActionRequest, actorUserID string) error {
	if req.Entity == nil || req.Entity.EntityID == "" {
		return ErrEntityIDMissing
	}
	opts := dto.EntityOptions{}
	if req.Options != nil {
		opts = *req.Options
	}

	if opts.HardDelete {
		if err := s.AuthorizeOrg(ctx, actorUserID, req.OrganizationID, domain.RoleAdmin); err != nil {
			return err
		}
		refs, err := s.entityRepo.CountTransactionLineRefs(ctx, req.OrganizationID, req.Entity.EntityID)
		if err != nil {
			return err
		}
		if refs > 0 {
			return fmt.Errorf("%w: %d transaction lines", ErrEntityReferenced, refs)
		}
		if err := s.entityRepo.HardDeleteEntity(ctx, req.OrganizationID, req.Entity.EntityID, opts.CascadeDelete); err != nil {
			s.LogError(ctx, err, "Failed to hard delete entity", slog.String("entity_id", req.Entity.EntityID))
			return err
		}
		s.LogInfo(ctx, "Entity hard deleted", slog.String("entity_id", req.Entity.EntityID))
		return nil
	}

	if err := s.AuthorizeOrg(ctx, actorUserID, req.OrganizationID, domain.RoleMember); err != nil {
		return err
	}
	status := domain.EntityDeleted
	if domain.EntityStatus(req.Entity.Status) == domain.EntityArchived {
		status = domain.EntityArchived
	}
	if err := s.entityRepo.SoftDeleteEntity(ctx, req.OrganizationID, req.Entity.EntityID, status, opts.DeleteReason, actorUserID, time.Now()); err != nil {
		s.LogError(ctx, err, "Failed to soft delete entity", slog.String("entity_id", req.Entity.EntityID))
		return err
	}
	s.LogInfo(ctx, "Entity soft deleted",
		slog.String("entity_id", req.Entity.EntityID), slog.String("status", string(status)))
	return nil
}
