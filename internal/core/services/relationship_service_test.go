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
	portsrepo "github.com/herafoundry/hera_data_engine/internal/core/ports/repositories"
	portssvc "github.com/herafoundry/hera_data_engine/internal/core/ports/services"
	"github.com/herafoundry/hera_data_engine/internal/core/services"
	"github.com/herafoundry/hera_data_engine/internal/dto"
)

type RelationshipServiceTestSuite struct {
	suite.Suite
	mockRelRepo    *MockRelationshipRepository
	mockEntityRepo *MockEntityRepository
	mockSmartCode  *MockSmartCodeService
	mockOrgSvc     *MockOrgService
	service        portssvc.RelationshipSvcFacade
}

func (suite *RelationshipServiceTestSuite) SetupTest() {
	suite.mockRelRepo = new(MockRelationshipRepository)
	suite.mockEntityRepo = new(MockEntityRepository)
	suite.mockSmartCode = new(MockSmartCodeService)
	suite.mockOrgSvc = new(MockOrgService)
	suite.service = services.NewRelationshipService(suite.mockRelRepo, suite.mockEntityRepo, suite.mockSmartCode, suite.mockOrgSvc)
}

func (suite *RelationshipServiceTestSuite) allowOrg(orgID string, minRole domain.OrganizationRole) {
	suite.mockOrgSvc.On("AuthorizeOrgAction", mock.Anything, mock.Anything, orgID, minRole).Return(nil)
}

func (suite *RelationshipServiceTestSuite) TestUpsertRelationship_Success() {
	ctx := context.Background()
	orgID := uuid.NewString()
	fromID := uuid.NewString()
	toID := uuid.NewString()
	suite.allowOrg(orgID, domain.RoleMember)

	req := dto.UpsertRelationshipRequest{
		OrganizationID:   orgID,
		FromEntityID:     fromID,
		ToEntityID:       toID,
		RelationshipType: "member_of",
		SmartCode:        "HERA.CRM.CUST.REL.MEMBER.v1",
	}
	suite.mockEntityRepo.On("FindEntityOrgIDs", ctx, []string{fromID, toID}).
		Return(map[string]string{fromID: orgID, toID: orgID}, nil).Once()
	suite.mockSmartCode.On("IsExclusiveRelationship", ctx, "member_of").Return(false).Once()
	suite.mockRelRepo.On("SaveRelationship", ctx, mock.AnythingOfType("domain.Relationship")).Return(nil).Once()

	relationshipID, warnings, err := suite.service.UpsertRelationship(ctx, req, uuid.NewString())

	suite.Require().NoError(err)
	suite.NotEmpty(relationshipID)
	suite.Empty(warnings)
	suite.mockRelRepo.AssertExpectations(suite.T())
}

func (suite *RelationshipServiceTestSuite) TestUpsertRelationship_SelfEdgeRejected() {
	ctx := context.Background()
	orgID := uuid.NewString()
	entityID := uuid.NewString()
	suite.allowOrg(orgID, domain.RoleMember)

	req := dto.UpsertRelationshipRequest{
		OrganizationID:   orgID,
		FromEntityID:     entityID,
		ToEntityID:       entityID,
		RelationshipType: "parent_of",
		SmartCode:        "HERA.CRM.CUST.REL.PARENT.v1",
	}
	_, _, err := suite.service.UpsertRelationship(ctx, req, uuid.NewString())
	suite.ErrorIs(err, services.ErrSelfRelationship)
	suite.mockRelRepo.AssertNotCalled(suite.T(), "SaveRelationship", mock.Anything, mock.Anything)
}

func (suite *RelationshipServiceTestSuite) TestUpsertRelationship_ForeignEndpointRejected() {
	ctx := context.Background()
	orgID := uuid.NewString()
	foreignOrgID := uuid.NewString()
	fromID := uuid.NewString()
	toID := uuid.NewString()
	suite.allowOrg(orgID, domain.RoleMember)

	req := dto.UpsertRelationshipRequest{
		OrganizationID:   orgID,
		FromEntityID:     fromID,
		ToEntityID:       toID,
		RelationshipType: "member_of",
		SmartCode:        "HERA.CRM.CUST.REL.MEMBER.v1",
	}
	suite.mockEntityRepo.On("FindEntityOrgIDs", ctx, []string{fromID, toID}).
		Return(map[string]string{fromID: orgID, toID: foreignOrgID}, nil).Once()

	_, _, err := suite.service.UpsertRelationship(ctx, req, uuid.NewString())
	suite.ErrorIs(err, services.ErrCrossTenantEdge)
	suite.mockRelRepo.AssertNotCalled(suite.T(), "SaveRelationship", mock.Anything, mock.Anything)
}

func (suite *RelationshipServiceTestSuite) TestUpsertRelationship_MissingEndpointRejected() {
	ctx := context.Background()
	orgID := uuid.NewString()
	fromID := uuid.NewString()
	toID := uuid.NewString()
	suite.allowOrg(orgID, domain.RoleMember)

	req := dto.UpsertRelationshipRequest{
		OrganizationID:   orgID,
		FromEntityID:     fromID,
		ToEntityID:       toID,
		RelationshipType: "member_of",
		SmartCode:        "HERA.CRM.CUST.REL.MEMBER.v1",
	}
	suite.mockEntityRepo.On("FindEntityOrgIDs", ctx, []string{fromID, toID}).
		Return(map[string]string{fromID: orgID}, nil).Once()

	_, _, err := suite.service.UpsertRelationship(ctx, req, uuid.NewString())
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *RelationshipServiceTestSuite) TestUpsertRelationship_ExclusiveTypeSupersedes() {
	ctx := context.Background()
	orgID := uuid.NewString()
	fromID := uuid.NewString()
	toID := uuid.NewString()
	priorEdgeID := uuid.NewString()
	suite.allowOrg(orgID, domain.RoleMember)

	req := dto.UpsertRelationshipRequest{
		OrganizationID:   orgID,
		FromEntityID:     fromID,
		ToEntityID:       toID,
		RelationshipType: "has_status",
		SmartCode:        "HERA.WORKFLOW.STATUS.REL.ASSIGN.v1",
	}
	suite.mockEntityRepo.On("FindEntityOrgIDs", ctx, []string{fromID, toID}).
		Return(map[string]string{fromID: orgID, toID: orgID}, nil).Once()
	suite.mockSmartCode.On("IsExclusiveRelationship", ctx, "has_status").Return(true).Once()
	suite.mockRelRepo.On("ListRelationships", ctx, orgID, portsrepo.RelationshipFilter{
		FromEntityID:     fromID,
		RelationshipType: "has_status",
	}).Return([]domain.Relationship{{RelationshipID: priorEdgeID}}, nil).Once()
	suite.mockRelRepo.On("SaveRelationship", ctx, mock.AnythingOfType("domain.Relationship")).Return(nil).Once()

	relationshipID, warnings, err := suite.service.UpsertRelationship(ctx, req, uuid.NewString())

	suite.Require().NoError(err)
	suite.NotEmpty(relationshipID)
	// the prior edge is superseded by appending, never deleted
	suite.Require().Len(warnings, 1)
	suite.Contains(warnings[0], priorEdgeID)
	suite.mockRelRepo.AssertNotCalled(suite.T(), "DeleteRelationshipsByEntityID", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RelationshipServiceTestSuite) TestQueryRelationships_RequiresEndpointFilter() {
	ctx := context.Background()
	orgID := uuid.NewString()
	suite.allowOrg(orgID, domain.RoleReadOnly)

	_, err := suite.service.QueryRelationships(ctx, dto.QueryRelationshipsParams{OrganizationID: orgID}, uuid.NewString())
	suite.ErrorIs(err, services.ErrRelationshipFilterMissing)
}

func (suite *RelationshipServiceTestSuite) TestQueryRelationships_FlagsCrossTenantEdges() {
	ctx := context.Background()
	orgID := uuid.NewString()
	foreignOrgID := uuid.NewString()
	fromID := uuid.NewString()
	inTenantID := uuid.NewString()
	foreignID := uuid.NewString()
	suite.allowOrg(orgID, domain.RoleReadOnly)

	edges := []domain.Relationship{
		{RelationshipID: uuid.NewString(), FromEntityID: fromID, ToEntityID: inTenantID},
		{RelationshipID: uuid.NewString(), FromEntityID: fromID, ToEntityID: foreignID},
	}
	suite.mockRelRepo.On("ListRelationships", ctx, orgID, portsrepo.RelationshipFilter{FromEntityID: fromID}).
		Return(edges, nil).Once()
	suite.mockEntityRepo.On("FindEntityOrgIDs", ctx, mock.AnythingOfType("[]string")).
		Return(map[string]string{fromID: orgID, inTenantID: orgID, foreignID: foreignOrgID}, nil).Once()
	suite.mockSmartCode.On("IsExclusiveRelationship", ctx, mock.Anything).Return(false)

	result, err := suite.service.QueryRelationships(ctx, dto.QueryRelationshipsParams{
		OrganizationID: orgID,
		FromEntityID:   fromID,
	}, uuid.NewString())

	suite.Require().NoError(err)
	suite.Require().Len(result, 2)
	// the foreign edge is flagged, not hidden
	suite.False(result[0].CrossTenantViolation)
	suite.True(result[1].CrossTenantViolation)
	// non-exclusive types are all current
	suite.True(result[0].IsCurrent)
	suite.True(result[1].IsCurrent)
}

func (suite *RelationshipServiceTestSuite) TestQueryRelationships_ExclusiveCurrentProjection() {
	ctx := context.Background()
	orgID := uuid.NewString()
	fromID := uuid.NewString()
	newerID := uuid.NewString()
	olderID := uuid.NewString()
	suite.allowOrg(orgID, domain.RoleReadOnly)

	now := time.Now()
	edges := []domain.Relationship{
		{RelationshipID: newerID, FromEntityID: fromID, ToEntityID: uuid.NewString(), RelationshipType: "has_status", CreatedAt: now},
		{RelationshipID: olderID, FromEntityID: fromID, ToEntityID: uuid.NewString(), RelationshipType: "has_status", CreatedAt: now.Add(-time.Hour)},
	}
	suite.mockRelRepo.On("ListRelationships", ctx, orgID, portsrepo.RelationshipFilter{FromEntityID: fromID, RelationshipType: "has_status"}).
		Return(edges, nil).Once()
	suite.mockEntityRepo.On("FindEntityOrgIDs", ctx, mock.AnythingOfType("[]string")).
		Return(map[string]string{fromID: orgID, edges[0].ToEntityID: orgID, edges[1].ToEntityID: orgID}, nil).Once()
	suite.mockSmartCode.On("IsExclusiveRelationship", ctx, "has_status").Return(true)

	result, err := suite.service.QueryRelationships(ctx, dto.QueryRelationshipsParams{
		OrganizationID:   orgID,
		FromEntityID:     fromID,
		RelationshipType: "has_status",
	}, uuid.NewString())

	suite.Require().NoError(err)
	suite.Require().Len(result, 2)
	// only the newest edge of an exclusive type is current
	suite.True(result[0].IsCurrent)
	suite.False(result[1].IsCurrent)
}

func TestRelationshipServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RelationshipServiceTestSuite))
}
