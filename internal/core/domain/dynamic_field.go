package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// FieldType selects which typed storage slot a dynamic field value occupies.
type FieldType string

const (
	FieldText    FieldType = "text"
	FieldNumber  FieldType = "number"
	FieldBoolean FieldType = "boolean"
	FieldDate    FieldType = "date"
	FieldJSON    FieldType = "json"
)

// FieldValue is a closed union over the supported typed slots. Exactly one of the
// pointers is non-nil, selected by Type.
type FieldValue struct {
	Type    FieldType        `json:"type"`
	Text    *string          `json:"text,omitempty"`
	Number  *decimal.Decimal `json:"number,omitempty"`
	Boolean *bool            `json:"boolean,omitempty"`
	Date    *time.Time       `json:"date,omitempty"`
	JSON    json.RawMessage  `json:"json,omitempty"`
}

// DynamicField is one typed attribute attached to an entity outside its fixed columns.
// One logical value exists per (entity, field name).
type DynamicField struct {
	FieldID        string     `json:"fieldID"` // Primary Key (UUID)
	OrganizationID string     `json:"organizationID"`
	EntityID       string     `json:"entityID"`
	FieldName      string     `json:"fieldName"`
	Value          FieldValue `json:"value"`
	SmartCode      string     `json:"smartCode"`
	AuditFields
}
