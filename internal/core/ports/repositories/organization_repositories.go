package repositories

import (
	"context"

	"github.com/herafoundry/hera_data_engine/internal/core/domain"
)

// OrganizationRepositoryFacade defines persistence operations for organizations
// and their memberships.
type OrganizationRepositoryFacade interface {
	SaveOrganization(ctx context.Context, org domain.Organization, creatorMembership domain.OrganizationUser) error
	FindOrganizationByID(ctx context.Context, organizationID string) (*domain.Organization, error)
	ListOrganizationsByUserID(ctx context.Context, userID string) ([]domain.Organization, error)
	FindMembership(ctx context.Context, organizationID, userID string) (*domain.OrganizationUser, error)
	AddUserToOrganization(ctx context.Context, membership domain.OrganizationUser) error
}
