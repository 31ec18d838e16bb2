package mapping

import (
	"github.com/herafoundry/hera_data_engine/internal/core/domain"
	"github.com/herafoundry/hera_data_engine/internal/models"
)

// ToModelDynamicField spreads a FieldValue union across the typed value columns.
func ToModelDynamicField(d domain.DynamicField) models.DynamicField {
	m := models.DynamicField{
		FieldID:        d.FieldID,
		OrganizationID: d.OrganizationID,
		EntityID:       d.EntityID,
		FieldName:      d.FieldName,
		FieldType:      models.FieldType(d.Value.Type),
		SmartCode:      d.SmartCode,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
	switch d.Value.Type {
	case domain.FieldText:
		m.ValueText = d.Value.Text
	case domain.FieldNumber:
		m.ValueNumber = d.Value.Number
	case domain.FieldBoolean:
		m.ValueBoolean = d.Value.Boolean
	case domain.FieldDate:
		m.ValueDate = d.Value.Date
	case domain.FieldJSON:
		m.ValueJSON = d.Value.JSON
	}
	return m
}

// ToDomainDynamicField rebuilds the FieldValue union from the populated typed column.
func ToDomainDynamicField(m models.DynamicField) domain.DynamicField {
	v := domain.FieldValue{Type: domain.FieldType(m.FieldType)}
	switch v.Type {
	case domain.FieldText:
		v.Text = m.ValueText
	case domain.FieldNumber:
		v.Number = m.ValueNumber
	case domain.FieldBoolean:
		v.Boolean = m.ValueBoolean
	case domain.FieldDate:
		v.Date = m.ValueDate
	case domain.FieldJSON:
		v.JSON = m.ValueJSON
	}
	return domain.DynamicField{
		FieldID:        m.FieldID,
		OrganizationID: m.OrganizationID,
		EntityID:       m.EntityID,
		FieldName:      m.FieldName,
		Value:          v,
		SmartCode:      m.SmartCode,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainDynamicFieldSlice converts a slice of model dynamic fields.
func ToDomainDynamicFieldSlice(ms []models.DynamicField) []domain.DynamicField {
	out := make([]domain.DynamicField, len(ms))
	for i, m := range ms {
		out[i] = ToDomainDynamicField(m)
	}
	return out
}
