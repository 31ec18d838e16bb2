package dto

import (
	"time"

	"github.com/herafoundry/hera_data_engine/internal/core/domain"
)

// CreateOrganizationRequest registers a new tenant.
type CreateOrganizationRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
}

// AddMemberRequest grants a user a role within an organization.
type AddMemberRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"required,oneof=ADMIN MEMBER READ_ONLY"`
}

// OrganizationResponse is the wire shape of a tenant.
type OrganizationResponse struct {
	OrganizationID string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// ToOrganizationResponse converts a domain organization to its wire shape.
func ToOrganizationResponse(o *domain.Organization) OrganizationResponse {
	return OrganizationResponse{
		OrganizationID: o.OrganizationID,
		Name:           o.Name,
		Description:    o.Description,
		IsActive:       o.IsActive,
		CreatedAt:      o.CreatedAt,
	}
}

// ToOrganizationResponses converts a slice of organizations.
func ToOrganizationResponses(orgs []domain.Organization) []OrganizationResponse {
	out := make([]OrganizationResponse, len(orgs))
	for i := range orgs {
		out[i] = ToOrganizationResponse(&orgs[i])
	}
	return out
}
