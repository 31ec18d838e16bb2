package services

import (
	"context"

	"github.com/herafoundry/hera_data_engine/internal/core/domain"
	"github.com/herafoundry/hera_data_engine/internal/dto"
)

// OrganizationSvcFacade owns tenant records and is the organization isolation
// guard: every store operation authorizes through it before touching data.
type OrganizationSvcFacade interface {
	// AuthorizeOrgAction fails with ErrForbidden when the actor may not act on
	// the organization at the required role, or when the request context is not
	// authorized for the organization at all.
	AuthorizeOrgAction(ctx context.Context, actorUserID, organizationID string, minRole domain.OrganizationRole) error

	CreateOrganization(ctx context.Context, req dto.CreateOrganizationRequest, creatorUserID string) (*domain.Organization, error)
	GetOrganizationByID(ctx context.Context, organizationID, requestingUserID string) (*domain.Organization, error)
	ListUserOrganizations(ctx context.Context, userID string) ([]domain.Organization, error)
	AddMember(ctx context.Context, organizationID string, req dto.AddMemberRequest, actorUserID string) error
}
