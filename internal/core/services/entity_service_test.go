package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/herafoundry/hera_data_engine/internal/apperrors"
	"github.com/herafoundry/hera_data_engine/internal/core/domain"
	portssvc "github.com/herafoundry/hera_data_engine/internal/core/ports/services"
	"github.com/herafoundry/hera_data_engine/internal/core/services"
	"github.com/herafoundry/hera_data_engine/internal/dto"
)

type EntityServiceTestSuite struct {
	suite.Suite
	mockEntityRepo *MockEntityRepository
	mockRelRepo    *MockRelationshipRepository
	mockSmartCode  *MockSmartCodeService
	mockOrgSvc     *MockOrgService
	service        portssvc.EntitySvcFacade
}

func (suite *EntityServiceTestSuite) SetupTest() {
	suite.mockEntityRepo = new(MockEntityRepository)
	suite.mockRelRepo = new(MockRelationshipRepository)
	suite.mockSmartCode = new(MockSmartCodeService)
	suite.mockOrgSvc = new(MockOrgService)
	suite.service = services.NewEntityService(suite.mockEntityRepo, suite.mockRelRepo, suite.mockSmartCode, suite.mockOrgSvc, 100)
}

func (suite *EntityServiceTestSuite) allowOrg(orgID string, minRole domain.OrganizationRole) {
	suite.mockOrgSvc.On("AuthorizeOrgAction", mock.Anything, mock.Anything, orgID, minRole).Return(nil)
}

func (suite *EntityServiceTestSuite) TestCreateEntity_Success() {
	ctx := context.Background()
	orgID := uuid.NewString()
	userID := uuid.NewString()
	suite.allowOrg(orgID, domain.RoleMember)

	creditLimit := decimal.RequireFromString("5000")
	req := dto.EntityActionRequest{
		Action:         dto.ActionCreate,
		OrganizationID: orgID,
		Entity: &dto.EntityPayload{
			EntityType: "customer",
			EntityName: "Mario's Pizza",
			EntityCode: "CUST-001",
			SmartCode:  "HERA.CRM.CUST.ENTITY.PROFILE.v1",
		},
		Dynamic: map[string]dto.DynamicFieldInput{
			"credit_limit": {FieldType: "number", FieldValueNumber: &creditLimit},
		},
	}

	suite.mockSmartCode.On("Behavior", ctx, "HERA.CRM.CUST.ENTITY.PROFILE.v1").
		Return(domain.SmartCodeBehavior{}, nil).Once()
	suite.mockEntityRepo.On("SaveEntity", ctx,
		mock.AnythingOfType("domain.Entity"),
		mock.AnythingOfType("[]domain.DynamicField"),
		mock.AnythingOfType("[]domain.Relationship")).Return(nil).Once()

	entity, warnings, err := suite.service.CreateEntity(ctx, req, userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(entity)
	suite.NotEmpty(entity.EntityID)
	suite.Equal(orgID, entity.OrganizationID)
	suite.Equal(domain.EntityActive, entity.Status)
	suite.Empty(warnings)
	suite.Equal(creditLimit, entity.DynamicFields["credit_limit"])

	savedFields := suite.mockEntityRepo.Calls[0].Arguments.Get(2).([]domain.DynamicField)
	suite.Require().Len(savedFields, 1)
	suite.Equal("credit_limit", savedFields[0].FieldName)
	// field smart code defaults to the entity's
	suite.Equal("HERA.CRM.CUST.ENTITY.PROFILE.v1", savedFields[0].SmartCode)

	suite.mockEntityRepo.AssertExpectations(suite.T())
}

func (suite *EntityServiceTestSuite) TestCreateEntity_AlignmentWarning() {
	ctx := context.Background()
	orgID := uuid.NewString()
	suite.allowOrg(orgID, domain.RoleMember)

	req := dto.EntityActionRequest{
		Action:         dto.ActionCreate,
		OrganizationID: orgID,
		Entity: &dto.EntityPayload{
			EntityType: "customer",
			EntityName: "Misaligned",
			SmartCode:  "HERA.FIN.GL.ENTITY.ACCT.v1",
		},
	}
	suite.mockSmartCode.On("Behavior", ctx, "HERA.FIN.GL.ENTITY.ACCT.v1").
		Return(domain.SmartCodeBehavior{}, nil).Once()
	suite.mockEntityRepo.On("SaveEntity", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	entity, warnings, err := suite.service.CreateEntity(ctx, req, uuid.NewString())
	suite.Require().NoError(err)
	suite.NotNil(entity)
	// misalignment warns but never blocks
	suite.Require().Len(warnings, 1)
	suite.Contains(warnings[0], "customer")
}

func (suite *EntityServiceTestSuite) TestCreateEntity_DuplicateCodeSurfaces() {
	ctx := context.Background()
	orgID := uuid.NewString()
	suite.allowOrg(orgID, domain.RoleMember)

	req := dto.EntityActionRequest{
		Action:         dto.ActionCreate,
		OrganizationID: orgID,
		Entity: &dto.EntityPayload{
			EntityType: "customer",
			EntityName: "Mario's Pizza",
			EntityCode: "CUST-001",
			SmartCode:  "HERA.CRM.CUST.ENTITY.PROFILE.v1",
		},
	}
	suite.mockSmartCode.On("Behavior", ctx, "HERA.CRM.CUST.ENTITY.PROFILE.v1").
		Return(domain.SmartCodeBehavior{}, nil).Once()
	// the storage layer reports a unique-constraint hit on (org, type, code)
	suite.mockEntityRepo.On("SaveEntity", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(apperrors.NewAppError(409, "entity code already in use for this type", apperrors.ErrDuplicate)).Once()

	entity, _, err := suite.service.CreateEntity(ctx, req, uuid.NewString())
	suite.Nil(entity)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *EntityServiceTestSuite) TestCreateEntity_MalformedSmartCodeRejected() {
	ctx := context.Background()
	orgID := uuid.NewString()
	suite.allowOrg(orgID, domain.RoleMember)

	req := dto.EntityActionRequest{
		Action:         dto.ActionCreate,
		OrganizationID: orgID,
		Entity:         &dto.EntityPayload{EntityType: "customer", EntityName: "X", SmartCode: "BAD.CODE"},
	}
	_, _, err := suite.service.CreateEntity(ctx, req, uuid.NewString())
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockEntityRepo.AssertNotCalled(suite.T(), "SaveEntity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *EntityServiceTestSuite) TestCreateEntity_RequiredFieldMissing() {
	ctx := context.Background()
	orgID := uuid.NewString()
	suite.allowOrg(orgID, domain.RoleMember)

	req := dto.EntityActionRequest{
		Action:         dto.ActionCreate,
		OrganizationID: orgID,
		Entity: &dto.EntityPayload{
			EntityType: "customer",
			EntityName: "No Email",
			SmartCode:  "HERA.CRM.CUST.ENTITY.PROFILE.v1",
		},
	}
	suite.mockSmartCode.On("Behavior", ctx, "HERA.CRM.CUST.ENTITY.PROFILE.v1").
		Return(domain.SmartCodeBehavior{RequiredFields: []string{"email"}}, nil).Once()

	_, _, err := suite.service.CreateEntity(ctx, req, uuid.NewString())
	suite.ErrorIs(err, services.ErrRequiredFieldMissing)
}

func (suite *EntityServiceTestSuite) TestCreateEntity_CrossTenantEdgeRejected() {
	ctx := context.Background()
	orgID := uuid.NewString()
	foreignOrgID := uuid.NewString()
	targetID := uuid.NewString()
	suite.allowOrg(orgID, domain.RoleMember)

	req := dto.EntityActionRequest{
		Action:         dto.ActionCreate,
		OrganizationID: orgID,
		Entity: &dto.EntityPayload{
			EntityType: "customer",
			EntityName: "Edge Case",
			SmartCode:  "HERA.CRM.CUST.ENTITY.PROFILE.v1",
		},
		Relationships: []dto.EntityRelationshipInput{
			{ToEntityID: targetID, RelationshipType: "member_of"},
		},
	}
	suite.mockSmartCode.On("Behavior", ctx, "HERA.CRM.CUST.ENTITY.PROFILE.v1").
		Return(domain.SmartCodeBehavior{}, nil).Once()
	suite.mockEntityRepo.On("FindEntityOrgIDs", ctx, []string{targetID}).
		Return(map[string]string{targetID: foreignOrgID}, nil).Once()

	_, _, err := suite.service.CreateEntity(ctx, req, uuid.NewString())
	suite.ErrorIs(err, services.ErrCrossTenantEdge)
	suite.mockEntityRepo.AssertNotCalled(suite.T(), "SaveEntity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *EntityServiceTestSuite) TestCreateEntity_Forbidden() {
	ctx := context.Background()
	orgID := uuid.NewString()
	suite.mockOrgSvc.On("AuthorizeOrgAction", mock.Anything, mock.Anything, orgID, domain.RoleMember).
		Return(apperrors.ErrForbidden).Once()

	req := dto.EntityActionRequest{
		Action:         dto.ActionCreate,
		OrganizationID: orgID,
		Entity:         &dto.EntityPayload{EntityType: "customer", EntityName: "X", SmartCode: "HERA.CRM.CUST.ENTITY.PROFILE.v1"},
	}
	_, _, err := suite.service.CreateEntity(ctx, req, uuid.NewString())
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *EntityServiceTestSuite) TestUpdateEntity_DeletedEntityRejected() {
	ctx := context.Background()
	orgID := uuid.NewString()
	entityID := uuid.NewString()
	suite.allowOrg(orgID, domain.RoleMember)

	suite.mockEntityRepo.On("FindEntityByID", ctx, orgID, entityID).
		Return(&domain.Entity{EntityID: entityID, OrganizationID: orgID, Status: domain.EntityDeleted}, nil).Once()

	req := dto.EntityActionRequest{
		Action:         dto.ActionUpdate,
		OrganizationID: orgID,
		Entity:         &dto.EntityPayload{EntityID: entityID, EntityName: "New Name"},
	}
	_, err := suite.service.UpdateEntity(ctx, req, uuid.NewString())
	suite.ErrorIs(err, services.ErrEntityDeleted)
	suite.mockEntityRepo.AssertNotCalled(suite.T(), "UpdateEntity", mock.Anything, mock.Anything)
}

func (suite *EntityServiceTestSuite) TestUpdateEntity_MergePatchesOnlySuppliedFields() {
	ctx := context.Background()
	orgID := uuid.NewString()
	entityID := uuid.NewString()
	userID := uuid.NewString()
	suite.allowOrg(orgID, domain.RoleMember)

	existing := &domain.Entity{
		EntityID:       entityID,
		OrganizationID: orgID,
		EntityType:     "customer",
		EntityName:     "Old Name",
		EntityCode:     "CUST-001",
		SmartCode:      "HERA.CRM.CUST.ENTITY.PROFILE.v1",
		Status:         domain.EntityActive,
	}
	suite.mockEntityRepo.On("FindEntityByID", ctx, orgID, entityID).Return(existing, nil).Once()
	suite.mockEntityRepo.On("UpdateEntity", ctx, mock.AnythingOfType("domain.Entity")).Return(nil).Once()
	suite.mockEntityRepo.On("FindDynamicFieldsByEntityIDs", ctx, orgID, []string{entityID}).
		Return(map[string][]domain.DynamicField{}, nil).Once()

	req := dto.EntityActionRequest{
		Action:         dto.ActionUpdate,
		OrganizationID: orgID,
		Entity:         &dto.EntityPayload{EntityID: entityID, EntityName: "New Name"},
	}
	updated, err := suite.service.UpdateEntity(ctx, req, userID)

	suite.Require().NoError(err)
	suite.Equal("New Name", updated.EntityName)
	// untouched header fields survive the patch
	suite.Equal("CUST-001", updated.EntityCode)
	suite.Equal("HERA.CRM.CUST.ENTITY.PROFILE.v1", updated.SmartCode)
	suite.Equal(userID, updated.LastUpdatedBy)
	suite.mockEntityRepo.AssertExpectations(suite.T())
}

func (suite *EntityServiceTestSuite) TestUpdateEntity_DeletedStatusNotReachable() {
	ctx := context.Background()
	orgID := uuid.NewString()
	entityID := uuid.NewString()
	suite.allowOrg(orgID, domain.RoleMember)

	suite.mockEntityRepo.On("FindEntityByID", ctx, orgID, entityID).
		Return(&domain.Entity{EntityID: entityID, OrganizationID: orgID, Status: domain.EntityActive}, nil).Once()

	req := dto.EntityActionRequest{
		Action:         dto.ActionUpdate,
		OrganizationID: orgID,
		Entity:         &dto.EntityPayload{EntityID: entityID, Status: "deleted"},
	}
	_, err := suite.service.UpdateEntity(ctx, req, uuid.NewString())
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *EntityServiceTestSuite) TestDeleteEntity_SoftDeleteDefault() {
	ctx := context.Background()
	orgID := uuid.NewString()
	entityID := uuid.NewString()
	userID := uuid.NewString()
	suite.allowOrg(orgID, domain.RoleMember)

	suite.mockEntityRepo.On("SoftDeleteEntity", ctx, orgID, entityID, domain.EntityDeleted,
		"duplicate record", userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	req := dto.EntityActionRequest{
		Action:         dto.ActionDelete,
		OrganizationID: orgID,
		Entity:         &dto.EntityPayload{EntityID: entityID},
		Options:        &dto.EntityOptions{DeleteReason: "duplicate record"},
	}
	err := suite.service.DeleteEntity(ctx, req, userID)
	suite.NoError(err)
	suite.mockEntityRepo.AssertExpectations(suite.T())
}

func (suite *EntityServiceTestSuite) TestDeleteEntity_HardDeleteBlockedByLineRefs() {
	ctx := context.Background()
	orgID := uuid.NewString()
	entityID := uuid.NewString()
	suite.allowOrg(orgID, domain.RoleAdmin)

	suite.mockEntityRepo.On("CountTransactionLineRefs", ctx, orgID, entityID).Return(int64(3), nil).Once()

	req := dto.EntityActionRequest{
		Action:         dto.ActionDelete,
		OrganizationID: orgID,
		Entity:         &dto.EntityPayload{EntityID: entityID},
		Options:        &dto.EntityOptions{HardDelete: true},
	}
	err := suite.service.DeleteEntity(ctx, req, uuid.NewString())
	suite.ErrorIs(err, services.ErrEntityReferenced)
	suite.mockEntityRepo.AssertNotCalled(suite.T(), "HardDeleteEntity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *EntityServiceTestSuite) TestListEntities_CapsLimit() {
	ctx := context.Background()
	orgID := uuid.NewString()
	suite.allowOrg(orgID, domain.RoleReadOnly)

	suite.mockEntityRepo.On("ListEntities", ctx, orgID, mock.AnythingOfType("repositories.EntityFilter"), 100, 0).
		Return([]domain.Entity{}, nil).Once()

	req := dto.EntityActionRequest{
		Action:         dto.ActionRead,
		OrganizationID: orgID,
		Options:        &dto.EntityOptions{Limit: 5000},
	}
	_, err := suite.service.ListEntities(ctx, req, uuid.NewString())
	suite.NoError(err)
	suite.mockEntityRepo.AssertExpectations(suite.T())
}

func TestEntityServiceTestSuite(t *testing.T) {
	suite.Run(t, new(EntityServiceTestSuite))
}
