package mapping

import (
	"github.com/herafoundry/hera_data_engine/internal/core/domain"
	"github.com/herafoundry/hera_data_engine/internal/models"
)

// ToModelOrganization converts a domain Organization to a model Organization
func ToModelOrganization(d domain.Organization) models.Organization {
	return models.Organization{
		OrganizationID: d.OrganizationID,
		Name:           d.Name,
		Description:    d.Description,
		IsActive:       d.IsActive,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainOrganization converts a model Organization to a domain Organization
func ToDomainOrganization(m models.Organization) domain.Organization {
	return domain.Organization{
		OrganizationID: m.OrganizationID,
		Name:           m.Name,
		Description:    m.Description,
		IsActive:       m.IsActive,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainOrganizationUser converts a model membership row.
func ToDomainOrganizationUser(m models.OrganizationUser) domain.OrganizationUser {
	return domain.OrganizationUser{
		OrganizationID: m.OrganizationID,
		UserID:         m.UserID,
		Role:           domain.OrganizationRole(m.Role),
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}
