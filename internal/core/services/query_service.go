package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/herafoundry/hera_data_engine/internal/core/domain"
	portsrepo "github.com/herafoundry/hera_data_engine/internal/core/ports/repositories"
	portssvc "github.com/herafoundry/hera_data_engine/internal/core/ports/services"
	"github.com/herafoundry/hera_data_engine/internal/utils/dynamicfields"
)

// queryService composes reads across the entity, relationship and transaction
// stores. It owns no storage and adds no authorization rules of its own; every
// operation authorizes exactly like the store it reads.
type queryService struct {
	BaseService
	entityRepo   portsrepo.EntityRepositoryFacade
	relRepo      portsrepo.RelationshipRepositoryFacade
	txnRepo      portsrepo.TransactionRepositoryFacade
	smartCodeSvc portssvc.SmartCodeSvcFacade
	maxReadLimit int
}

// NewQueryService creates a new QueryService.
func NewQueryService(entityRepo portsrepo.EntityRepositoryFacade, relRepo portsrepo.RelationshipRepositoryFacade, txnRepo portsrepo.TransactionRepositoryFacade, smartCodeSvc portssvc.SmartCodeSvcFacade, orgSvc portssvc.OrganizationSvcFacade, maxReadLimit int) portssvc.QuerySvcFacade {
	if maxReadLimit <= 0 {
		maxReadLimit = 100
	}
	return &queryService{
		BaseService:  BaseService{OrgAuthorizer: orgSvc},
		entityRepo:   entityRepo,
		relRepo:      relRepo,
		txnRepo:      txnRepo,
		smartCodeSvc: smartCodeSvc,
		maxReadLimit: maxReadLimit,
	}
}

// Ensure queryService implements the portssvc.QuerySvcFacade interface
var _ portssvc.QuerySvcFacade = (*queryService)(nil)

// valuesEqual compares a stored dynamic field value with a query value. Numbers
// compare as decimals so 42, "42" and 42.0 all match; everything else compares
// by string form.
func valuesEqual(stored, want any) bool {
	if sd, ok := toComparableDecimal(stored); ok {
		if wd, ok := toComparableDecimal(want); ok {
			return sd.Equal(wd)
		}
		return false
	}
	return fmt.Sprintf("%v", stored) == fmt.Sprintf("%v", want)
}

func toComparableDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case float64:
		return decimal.NewFromFloat(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	default:
		return decimal.Zero, false
	}
}

// matchEntitiesByField returns the subset of entities whose dynamic field
// fieldName currently holds the wanted value, with dynamic fields composed in.
func (s *queryService) matchEntitiesByField(ctx context.Context, organizationID string, entities []domain.Entity, fieldName string, value any) ([]domain.Entity, error) {
	if len(entities) == 0 {
		return nil, nil
	}
	entityIDs := make([]string, len(entities))
	for i := range entities {
		entityIDs[i] = entities[i].EntityID
	}
	fieldsByEntity, err := s.entityRepo.FindDynamicFieldsByEntityIDs(ctx, organizationID, entityIDs)
	if err != nil {
		return nil, err
	}

	matched := []domain.Entity{}
	for _, entity := range entities {
		flat := dynamicfields.Flatten(fieldsByEntity[entity.EntityID])
		stored, present := flat[fieldName]
		if !present || !valuesEqual(stored, value) {
			continue
		}
		entity.DynamicFields = flat
		matched = append(matched, entity)
	}
	return matched, nil
}

func (s *queryService) EntitiesWithFieldValue(ctx context.Context, organizationID, entityType, fieldName string, value any, actorUserID string) ([]domain.Entity, error) {
	if err := s.AuthorizeOrg(ctx, actorUserID, organizationID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	entities, err := s.entityRepo.ListEntities(ctx, organizationID, portsrepo.EntityFilter{EntityType: entityType}, s.maxReadLimit, 0)
	if err != nil {
		return nil, err
	}
	return s.matchEntitiesByField(ctx, organizationID, entities, fieldName, value)
}

func (s *queryService) TransactionsBySourceEntityField(ctx context.Context, organizationID, fieldName string, value any, actorUserID string) ([]domain.Transaction, error) {
	if err := s.AuthorizeOrg(ctx, actorUserID, organizationID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	entities, err := s.entityRepo.ListEntities(ctx, organizationID, portsrepo.EntityFilter{}, s.maxReadLimit, 0)
	if err != nil {
		return nil, err
	}
	matched, err := s.matchEntitiesByField(ctx, organizationID, entities, fieldName, value)
	if err != nil {
		return nil, err
	}

	result := []domain.Transaction{}
	for _, entity := range matched {
		txns, _, err := s.txnRepo.ListTransactions(ctx, organizationID, portsrepo.TransactionFilter{EntityID: entity.EntityID}, s.maxReadLimit, nil)
		if err != nil {
			return nil, err
		}
		for _, txn := range txns {
			if txn.SourceEntityID != nil && *txn.SourceEntityID == entity.EntityID {
				result = append(result, txn)
			}
		}
	}
	return result, nil
}

func (s *queryService) EntityActivity(ctx context.Context, organizationID, entityID string, limit int, actorUserID string) (*domain.Entity, []domain.Relationship, []domain.Transaction, error) {
	if err := s.AuthorizeOrg(ctx, actorUserID, organizationID, domain.RoleReadOnly); err != nil {
		return nil, nil, nil, err
	}
	if limit <= 0 || limit > s.maxReadLimit {
		limit = s.maxReadLimit
	}

	entity, err := s.entityRepo.FindEntityByID(ctx, organizationID, entityID)
	if err != nil {
		return nil, nil, nil, err
	}
	fieldsByEntity, err := s.entityRepo.FindDynamicFieldsByEntityIDs(ctx, organizationID, []string{entityID})
	if err != nil {
		return nil, nil, nil, err
	}
	entity.DynamicFields = dynamicfields.Flatten(fieldsByEntity[entityID])

	outgoing, err := s.relRepo.ListRelationships(ctx, organizationID, portsrepo.RelationshipFilter{FromEntityID: entityID})
	if err != nil {
		return nil, nil, nil, err
	}
	incoming, err := s.relRepo.ListRelationships(ctx, organizationID, portsrepo.RelationshipFilter{ToEntityID: entityID})
	if err != nil {
		return nil, nil, nil, err
	}
	edges := append(outgoing, incoming...)
	markCurrentEdges(ctx, s.smartCodeSvc, edges)

	txns, _, err := s.txnRepo.ListTransactions(ctx, organizationID, portsrepo.TransactionFilter{EntityID: entityID}, limit, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	return entity, edges, txns, nil
}
