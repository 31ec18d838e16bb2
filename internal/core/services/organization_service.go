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
	"github.com/herafoundry/hera_data_engine/internal/middleware"
)

// organizationService owns tenant records and is the isolation guard for every
// other service.
type organizationService struct {
	BaseService
	orgRepo portsrepo.OrganizationRepositoryFacade
}

// NewOrganizationService creates a new OrganizationService.
func NewOrganizationService(orgRepo portsrepo.OrganizationRepositoryFacade) portssvc.OrganizationSvcFacade {
	return &organizationService{
		orgRepo: orgRepo,
	}
}

// Ensure organizationService implements the portssvc.OrganizationSvcFacade interface
var _ portssvc.OrganizationSvcFacade = (*organizationService)(nil)

// AuthorizeOrgAction checks two gates in order: the request's token scope must
// cover the organization, and the actor must hold at least minRole there.
// Returns apperrors.ErrForbidden when either gate fails; membership absence is
// reported as ErrForbidden too, so callers cannot probe for tenant existence.
func (s *organizationService) AuthorizeOrgAction(ctx context.Context, actorUserID, organizationID string, minRole domain.OrganizationRole) error {
	logger := s.GetLogger(ctx)

	if scope, ok := middleware.GetAuthScopeFromCtx(ctx); ok {
		if !scope.Authorizes(organizationID) {
			logger.Warn("Authorization failed: token scope does not cover organization",
				slog.String("user_id", actorUserID), slog.String("organization_id", organizationID))
			return apperrors.ErrForbidden
		}
		// Cross-tenant service callers skip the membership check.
		if scope.CrossTenant {
			return nil
		}
	}

	membership, err := s.orgRepo.FindMembership(ctx, organizationID, actorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Authorization failed: user is not a member of organization",
				slog.String("user_id", actorUserID), slog.String("organization_id", organizationID))
			return apperrors.ErrForbidden
		}
		return fmt.Errorf("failed to check membership of user %s in organization %s: %w", actorUserID, organizationID, err)
	}

	if !membership.Role.CanPerform(minRole) {
		logger.Warn("Authorization failed: insufficient role",
			slog.String("user_id", actorUserID),
			slog.String("organization_id", organizationID),
			slog.String("role", string(membership.Role)),
			slog.String("required_role", string(minRole)))
		return apperrors.ErrForbidden
	}
	return nil
}

func (s *organizationService) CreateOrganization(ctx context.Context, req dto.CreateOrganizationRequest, creatorUserID string) (*domain.Organization, error) {
	now := time.Now()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     creatorUserID,
		LastUpdatedAt: now,
		LastUpdatedBy: creatorUserID,
	}
	org := domain.Organization{
		OrganizationID: uuid.NewString(),
		Name:           req.Name,
		Description:    req.Description,
		IsActive:       true,
		AuditFields:    audit,
	}
	membership := domain.OrganizationUser{
		OrganizationID: org.OrganizationID,
		UserID:         creatorUserID,
		Role:           domain.RoleAdmin,
		AuditFields:    audit,
	}

	if err := s.orgRepo.SaveOrganization(ctx, org, membership); err != nil {
		s.LogError(ctx, err, "Failed to create organization", slog.String("name", req.Name))
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	s.LogInfo(ctx, "Organization created",
		slog.String("organization_id", org.OrganizationID), slog.String("creator_user_id", creatorUserID))
	return &org, nil
}

func (s *organizationService) GetOrganizationByID(ctx context.Context, organizationID, requestingUserID string) (*domain.Organization, error) {
	if err := s.AuthorizeOrgAction(ctx, requestingUserID, organizationID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	org, err := s.orgRepo.FindOrganizationByID(ctx, organizationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find organization %s: %w", organizationID, err)
	}
	return org, nil
}

func (s *organizationService) ListUserOrganizations(ctx context.Context, userID string) ([]domain.Organization, error) {
	orgs, err := s.orgRepo.ListOrganizationsByUserID(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list organizations", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to list organizations for user %s: %w", userID, err)
	}
	return orgs, nil
}

func (s *organizationService) AddMember(ctx context.Context, organizationID string, req dto.AddMemberRequest, actorUserID string) error {
	// Only admins manage membership.
	if err := s.AuthorizeOrgAction(ctx, actorUserID, organizationID, domain.RoleAdmin); err != nil {
		return err
	}

	now := time.Now()
	membership := domain.OrganizationUser{
		OrganizationID: organizationID,
		UserID:         req.UserID,
		Role:           domain.OrganizationRole(req.Role),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorUserID,
		},
	}
	if err := s.orgRepo.AddUserToOrganization(ctx, membership); err != nil {
		s.LogError(ctx, err, "Failed to add member",
			slog.String("organization_id", organizationID), slog.String("target_user_id", req.UserID))
		return fmt.Errorf("failed to add user %s to organization %s: %w", req.UserID, organizationID, err)
	}

	s.LogInfo(ctx, "Member added to organization",
		slog.String("organization_id", organizationID),
		slog.String("target_user_id", req.UserID),
		slog.String("role", req.Role),
		slog.String("added_by_user_id", actorUserID))
	return nil
}
