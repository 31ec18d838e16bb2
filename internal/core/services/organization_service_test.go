package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/herafoundry/hera_data_engine/internal/apperrors"
	"github.com/herafoundry/hera_data_engine/internal/core/domain"
	portssvc "github.com/herafoundry/hera_data_engine/internal/core/ports/services"
	"github.com/herafoundry/hera_data_engine/internal/core/services"
	"github.com/herafoundry/hera_data_engine/internal/dto"
	"github.com/herafoundry/hera_data_engine/internal/middleware"
)

type OrganizationServiceTestSuite struct {
	suite.Suite
	mockRepo *MockOrganizationRepository
	service  portssvc.OrganizationSvcFacade
}

func (suite *OrganizationServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockOrganizationRepository)
	suite.service = services.NewOrganizationService(suite.mockRepo)
}

func (suite *OrganizationServiceTestSuite) TestCreateOrganization_Success() {
	ctx := context.Background()
	creatorUserID := uuid.NewString()
	req := dto.CreateOrganizationRequest{Name: "Mario's Pizza", Description: "Test tenant"}

	suite.mockRepo.On("SaveOrganization", ctx,
		mock.AnythingOfType("domain.Organization"),
		mock.AnythingOfType("domain.OrganizationUser")).Return(nil).Once()

	org, err := suite.service.CreateOrganization(ctx, req, creatorUserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(org)
	suite.NotEmpty(org.OrganizationID)
	suite.Equal(req.Name, org.Name)
	suite.True(org.IsActive)
	suite.Equal(creatorUserID, org.CreatedBy)
	suite.WithinDuration(time.Now(), org.CreatedAt, time.Second)

	// the creator is enrolled as admin in the same call
	savedMembership := suite.mockRepo.Calls[0].Arguments.Get(2).(domain.OrganizationUser)
	suite.Equal(org.OrganizationID, savedMembership.OrganizationID)
	suite.Equal(creatorUserID, savedMembership.UserID)
	suite.Equal(domain.RoleAdmin, savedMembership.Role)

	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *OrganizationServiceTestSuite) TestAuthorizeOrgAction_MemberAllowed() {
	ctx := context.Background()
	orgID := uuid.NewString()
	userID := uuid.NewString()

	suite.mockRepo.On("FindMembership", ctx, orgID, userID).
		Return(&domain.OrganizationUser{OrganizationID: orgID, UserID: userID, Role: domain.RoleMember}, nil).Once()

	err := suite.service.AuthorizeOrgAction(ctx, userID, orgID, domain.RoleMember)
	suite.NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *OrganizationServiceTestSuite) TestAuthorizeOrgAction_InsufficientRole() {
	ctx := context.Background()
	orgID := uuid.NewString()
	userID := uuid.NewString()

	suite.mockRepo.On("FindMembership", ctx, orgID, userID).
		Return(&domain.OrganizationUser{OrganizationID: orgID, UserID: userID, Role: domain.RoleReadOnly}, nil).Once()

	err := suite.service.AuthorizeOrgAction(ctx, userID, orgID, domain.RoleMember)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *OrganizationServiceTestSuite) TestAuthorizeOrgAction_NonMemberGetsForbiddenNotNotFound() {
	ctx := context.Background()
	orgID := uuid.NewString()
	userID := uuid.NewString()

	suite.mockRepo.On("FindMembership", ctx, orgID, userID).
		Return(nil, apperrors.ErrNotFound).Once()

	// membership absence must not be distinguishable from insufficient role
	err := suite.service.AuthorizeOrgAction(ctx, userID, orgID, domain.RoleReadOnly)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *OrganizationServiceTestSuite) TestAuthorizeOrgAction_ScopeDoesNotCoverOrganization() {
	orgID := uuid.NewString()
	otherOrgID := uuid.NewString()
	userID := uuid.NewString()
	ctx := middleware.WithAuth(context.Background(), userID, middleware.AuthScope{OrganizationIDs: []string{otherOrgID}})

	// the scope gate fails before any membership lookup happens
	err := suite.service.AuthorizeOrgAction(ctx, userID, orgID, domain.RoleReadOnly)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindMembership", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *OrganizationServiceTestSuite) TestAuthorizeOrgAction_CrossTenantScopeSkipsMembership() {
	orgID := uuid.NewString()
	userID := uuid.NewString()
	ctx := middleware.WithAuth(context.Background(), userID, middleware.AuthScope{CrossTenant: true})

	err := suite.service.AuthorizeOrgAction(ctx, userID, orgID, domain.RoleAdmin)
	suite.NoError(err)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindMembership", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *OrganizationServiceTestSuite) TestAddMember_RequiresAdmin() {
	ctx := context.Background()
	orgID := uuid.NewString()
	actorID := uuid.NewString()

	suite.mockRepo.On("FindMembership", ctx, orgID, actorID).
		Return(&domain.OrganizationUser{OrganizationID: orgID, UserID: actorID, Role: domain.RoleMember}, nil).Once()

	err := suite.service.AddMember(ctx, orgID, dto.AddMemberRequest{UserID: uuid.NewString(), Role: "MEMBER"}, actorID)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockRepo.AssertNotCalled(suite.T(), "AddUserToOrganization", mock.Anything, mock.Anything)
}

func (suite *OrganizationServiceTestSuite) TestAddMember_Success() {
	ctx := context.Background()
	orgID := uuid.NewString()
	actorID := uuid.NewString()
	targetID := uuid.NewString()

	suite.mockRepo.On("FindMembership", ctx, orgID, actorID).
		Return(&domain.OrganizationUser{OrganizationID: orgID, UserID: actorID, Role: domain.RoleAdmin}, nil).Once()
	suite.mockRepo.On("AddUserToOrganization", ctx, mock.AnythingOfType("domain.OrganizationUser")).Return(nil).Once()

	err := suite.service.AddMember(ctx, orgID, dto.AddMemberRequest{UserID: targetID, Role: "READ_ONLY"}, actorID)
	suite.Require().NoError(err)

	saved := suite.mockRepo.Calls[1].Arguments.Get(1).(domain.OrganizationUser)
	suite.Equal(targetID, saved.UserID)
	suite.Equal(domain.RoleReadOnly, saved.Role)
	suite.Equal(actorID, saved.CreatedBy)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *OrganizationServiceTestSuite) TestGetOrganizationByID_Success() {
	ctx := context.Background()
	orgID := uuid.NewString()
	userID := uuid.NewString()
	expected := &domain.Organization{OrganizationID: orgID, Name: "Found Tenant", IsActive: true}

	suite.mockRepo.On("FindMembership", ctx, orgID, userID).
		Return(&domain.OrganizationUser{OrganizationID: orgID, UserID: userID, Role: domain.RoleReadOnly}, nil).Once()
	suite.mockRepo.On("FindOrganizationByID", ctx, orgID).Return(expected, nil).Once()

	org, err := suite.service.GetOrganizationByID(ctx, orgID, userID)
	suite.Require().NoError(err)
	suite.Equal(expected, org)
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestOrganizationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OrganizationServiceTestSuite))
}
