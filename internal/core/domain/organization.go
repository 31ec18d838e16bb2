package domain

// OrganizationRole defines the role of a user within an organization.
type OrganizationRole string

const (
	RoleAdmin    OrganizationRole = "ADMIN"
	RoleMember   OrganizationRole = "MEMBER"
	RoleReadOnly OrganizationRole = "READ_ONLY"
)

// CanPerform reports whether a role satisfies the required minimum role.
func (r OrganizationRole) CanPerform(required OrganizationRole) bool {
	rank := map[OrganizationRole]int{RoleReadOnly: 1, RoleMember: 2, RoleAdmin: 3}
	return rank[r] >= rank[required]
}

// Organization is the tenant-isolation boundary; every row in every store belongs to exactly one.
type Organization struct {
	OrganizationID string `json:"organizationID"` // Primary Key (UUID)
	Name           string `json:"name"`
	Description    string `json:"description"`
	IsActive       bool   `json:"isActive"`
	AuditFields
}

// OrganizationUser is a membership row linking a user to an organization with a role.
type OrganizationUser struct {
	OrganizationID string           `json:"organizationID"`
	UserID         string           `json:"userID"`
	Role           OrganizationRole `json:"role"`
	AuditFields
}
