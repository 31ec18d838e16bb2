package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/herafoundry/hera_data_engine/internal/core/domain"
	portsrepo "github.com/herafoundry/hera_data_engine/internal/core/ports/repositories"
	"github.com/herafoundry/hera_data_engine/internal/dto"
)

// MockOrganizationRepository is a mock type for the OrganizationRepositoryFacade interface
type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) SaveOrganization(ctx context.Context, org domain.Organization, creatorMembership domain.OrganizationUser) error {
	args := m.Called(ctx, org, creatorMembership)
	return args.Error(0)
}

func (m *MockOrganizationRepository) FindOrganizationByID(ctx context.Context, organizationID string) (*domain.Organization, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) ListOrganizationsByUserID(ctx context.Context, userID string) ([]domain.Organization, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) FindMembership(ctx context.Context, organizationID, userID string) (*domain.OrganizationUser, error) {
	args := m.Called(ctx, organizationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrganizationUser), args.Error(1)
}

func (m *MockOrganizationRepository) AddUserToOrganization(ctx context.Context, membership domain.OrganizationUser) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

// MockEntityRepository is a mock type for the EntityRepositoryFacade interface
type MockEntityRepository struct {
	mock.Mock
}

func (m *MockEntityRepository) SaveEntity(ctx context.Context, entity domain.Entity, fields []domain.DynamicField, relationships []domain.Relationship) error {
	args := m.Called(ctx, entity, fields, relationships)
	return args.Error(0)
}

func (m *MockEntityRepository) FindEntityByID(ctx context.Context, organizationID, entityID string) (*domain.Entity, error) {
	args := m.Called(ctx, organizationID, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entity), args.Error(1)
}

func (m *MockEntityRepository) ListEntities(ctx context.Context, organizationID string, filter portsrepo.EntityFilter, limit, offset int) ([]domain.Entity, error) {
	args := m.Called(ctx, organizationID, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Entity), args.Error(1)
}

func (m *MockEntityRepository) UpdateEntity(ctx context.Context, entity domain.Entity) error {
	args := m.Called(ctx, entity)
	return args.Error(0)
}

func (m *MockEntityRepository) UpsertDynamicFields(ctx context.Context, fields []domain.DynamicField) error {
	args := m.Called(ctx, fields)
	return args.Error(0)
}

func (m *MockEntityRepository) FindDynamicFieldsByEntityIDs(ctx context.Context, organizationID string, entityIDs []string) (map[string][]domain.DynamicField, error) {
	args := m.Called(ctx, organizationID, entityIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]domain.DynamicField), args.Error(1)
}

func (m *MockEntityRepository) SoftDeleteEntity(ctx context.Context, organizationID, entityID string, status domain.EntityStatus, reason, userID string, at time.Time) error {
	args := m.Called(ctx, organizationID, entityID, status, reason, userID, at)
	return args.Error(0)
}

func (m *MockEntityRepository) HardDeleteEntity(ctx context.Context, organizationID, entityID string, cascade bool) error {
	args := m.Called(ctx, organizationID, entityID, cascade)
	return args.Error(0)
}

func (m *MockEntityRepository) CountTransactionLineRefs(ctx context.Context, organizationID, entityID string) (int64, error) {
	args := m.Called(ctx, organizationID, entityID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEntityRepository) FindEntityOrgIDs(ctx context.Context, entityIDs []string) (map[string]string, error) {
	args := m.Called(ctx, entityIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

// MockRelationshipRepository is a mock type for the RelationshipRepositoryFacade interface
type MockRelationshipRepository struct {
	mock.Mock
}

func (m *MockRelationshipRepository) SaveRelationship(ctx context.Context, rel domain.Relationship) error {
	args := m.Called(ctx, rel)
	return args.Error(0)
}

func (m *MockRelationshipRepository) ListRelationships(ctx context.Context, organizationID string, filter portsrepo.RelationshipFilter) ([]domain.Relationship, error) {
	args := m.Called(ctx, organizationID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Relationship), args.Error(1)
}

func (m *MockRelationshipRepository) FindRelationshipsByEntityIDs(ctx context.Context, organizationID string, entityIDs []string) (map[string][]domain.Relationship, error) {
	args := m.Called(ctx, organizationID, entityIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]domain.Relationship), args.Error(1)
}

func (m *MockRelationshipRepository) DeleteRelationshipsByEntityID(ctx context.Context, organizationID, entityID string) error {
	args := m.Called(ctx, organizationID, entityID)
	return args.Error(0)
}

// MockTransactionRepository is a mock type for the TransactionRepositoryFacade interface
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction, lines []domain.TransactionLine, requireBalanced bool) error {
	args := m.Called(ctx, txn, lines, requireBalanced)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, organizationID, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, organizationID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindLinesByTransactionID(ctx context.Context, organizationID, transactionID string) ([]domain.TransactionLine, error) {
	args := m.Called(ctx, organizationID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransactionLine), args.Error(1)
}

func (m *MockTransactionRepository) FindLinesByTransactionIDs(ctx context.Context, organizationID string, transactionIDs []string) (map[string][]domain.TransactionLine, error) {
	args := m.Called(ctx, organizationID, transactionIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]domain.TransactionLine), args.Error(1)
}

func (m *MockTransactionRepository) ListTransactions(ctx context.Context, organizationID string, filter portsrepo.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, organizationID, filter, limit, nextToken)
	var txns []domain.Transaction
	if args.Get(0) != nil {
		txns = args.Get(0).([]domain.Transaction)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return txns, token, args.Error(2)
}

func (m *MockTransactionRepository) SaveReversal(ctx context.Context, originalID string, reversing domain.Transaction, lines []domain.TransactionLine) error {
	args := m.Called(ctx, originalID, reversing, lines)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindCandidateDuplicates(ctx context.Context, organizationID string, probe portsrepo.DuplicateProbe) ([]domain.Transaction, error) {
	args := m.Called(ctx, organizationID, probe)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

// MockSmartCodeRepository is a mock type for the SmartCodeRepositoryFacade interface
type MockSmartCodeRepository struct {
	mock.Mock
}

func (m *MockSmartCodeRepository) ListSmartCodeEntries(ctx context.Context) ([]domain.SmartCodeEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SmartCodeEntry), args.Error(1)
}

func (m *MockSmartCodeRepository) SaveSmartCodeEntry(ctx context.Context, entry domain.SmartCodeEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockOrgService is a mock type for the OrganizationSvcFacade interface, used
// where services only need the authorization gate.
type MockOrgService struct {
	mock.Mock
}

func (m *MockOrgService) AuthorizeOrgAction(ctx context.Context, actorUserID, organizationID string, minRole domain.OrganizationRole) error {
	args := m.Called(ctx, actorUserID, organizationID, minRole)
	return args.Error(0)
}

func (m *MockOrgService) CreateOrganization(ctx context.Context, req dto.CreateOrganizationRequest, creatorUserID string) (*domain.Organization, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
}

func (m *MockOrgService) GetOrganizationByID(ctx context.Context, organizationID, requestingUserID string) (*domain.Organization, error) {
	args := m.Called(ctx, organizationID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
}

func (m *MockOrgService) ListUserOrganizations(ctx context.Context, userID string) ([]domain.Organization, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Organization), args.Error(1)
}

func (m *MockOrgService) AddMember(ctx context.Context, organizationID string, req dto.AddMemberRequest, actorUserID string) error {
	args := m.Called(ctx, organizationID, req, actorUserID)
	return args.Error(0)
}

// MockSmartCodeService is a mock type for the SmartCodeSvcFacade interface
type MockSmartCodeService struct {
	mock.Mock
}

func (m *MockSmartCodeService) Behavior(ctx context.Context, code string) (domain.SmartCodeBehavior, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(domain.SmartCodeBehavior), args.Error(1)
}

func (m *MockSmartCodeService) IsExclusiveRelationship(ctx context.Context, relationshipType string) bool {
	args := m.Called(ctx, relationshipType)
	return args.Bool(0)
}

func (m *MockSmartCodeService) Register(ctx context.Context, entry domain.SmartCodeEntry, actorUserID string) error {
	args := m.Called(ctx, entry, actorUserID)
	return args.Error(0)
}

func (m *MockSmartCodeService) Reload(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
