package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// FieldType selects which typed column of core_dynamic_data holds the value.
type FieldType string

const (
	FieldText    FieldType = "text"
	FieldNumber  FieldType = "number"
	FieldBoolean FieldType = "boolean"
	FieldDate    FieldType = "date"
	FieldJSON    FieldType = "json"
)

// DynamicField maps to the core_dynamic_data table. Exactly one of the typed value
// columns is non-null, selected by FieldType.
type DynamicField struct {
	FieldID        string           `json:"fieldID"`
	OrganizationID string           `json:"organizationID"`
	EntityID       string           `json:"entityID"`
	FieldName      string           `json:"fieldName"`
	FieldType      FieldType        `json:"fieldType"`
	ValueText      *string          `json:"fieldValueText"`
	ValueNumber    *decimal.Decimal `json:"fieldValueNumber"`
	ValueBoolean   *bool            `json:"fieldValueBoolean"`
	ValueDate      *time.Time       `json:"fieldValueDate"`
	ValueJSON      json.RawMessage  `json:"fieldValueJSON"`
	SmartCode      string           `json:"smartCode"`
	AuditFields
}
