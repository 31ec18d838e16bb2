package mapping

import (
	"github.com/herafoundry/hera_data_engine/internal/core/domain"
	"github.com/herafoundry/hera_data_engine/internal/models"
)

// ToModelEntity converts a domain Entity to a model Entity
func ToModelEntity(d domain.Entity) models.Entity {
	var code *string
	if d.EntityCode != "" {
		c := d.EntityCode
		code = &c
	}
	return models.Entity{
		EntityID:       d.EntityID,
		OrganizationID: d.OrganizationID,
		EntityType:     d.EntityType,
		EntityName:     d.EntityName,
		EntityCode:     code,
		SmartCode:      d.SmartCode,
		Status:         models.EntityStatus(d.Status),
		Metadata:       d.Metadata,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainEntity converts a model Entity to a domain Entity
func ToDomainEntity(m models.Entity) domain.Entity {
	code := ""
	if m.EntityCode != nil {
		code = *m.EntityCode
	}
	return domain.Entity{
		EntityID:       m.EntityID,
		OrganizationID: m.OrganizationID,
		EntityType:     m.EntityType,
		EntityName:     m.EntityName,
		EntityCode:     code,
		SmartCode:      m.SmartCode,
		Status:         domain.EntityStatus(m.Status),
		Metadata:       m.Metadata,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}
