package models

// OrganizationRole defines the role of a user within an organization.
type OrganizationRole string

const (
	RoleAdmin    OrganizationRole = "ADMIN"
	RoleMember   OrganizationRole = "MEMBER"
	RoleReadOnly OrganizationRole = "READ_ONLY"
)

// Organization maps to the organizations table.
type Organization struct {
	OrganizationID string `json:"organizationID"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	IsActive       bool   `json:"isActive"`
	AuditFields
}

// OrganizationUser maps to the organization_users membership table.
type OrganizationUser struct {
	OrganizationID string           `json:"organizationID"`
	UserID         string           `json:"userID"`
	Role           OrganizationRole `json:"role"`
	AuditFields
}
