package domain

import "encoding/json"

// EntityStatus tracks the lifecycle of an entity row.
type EntityStatus string

const (
	EntityActive   EntityStatus = "active"
	EntityArchived EntityStatus = "archived"
	EntityDeleted  EntityStatus = "deleted"
)

// Entity is a typed business object (customer, product, GL account, ...) stored generically.
// The concrete "model" is a row-level convention: EntityType plus a smart code plus
// a bag of typed dynamic fields.
type Entity struct {
	EntityID       string          `json:"entityID"`       // Primary Key (UUID)
	OrganizationID string          `json:"organizationID"` // FK -> organizations (NON-NULL)
	EntityType     string          `json:"entityType"`     // e.g. customer, product, gl_account
	EntityName     string          `json:"entityName"`
	EntityCode     string          `json:"entityCode"` // Optional; unique per (org, type) when set
	SmartCode      string          `json:"smartCode"`
	Status         EntityStatus    `json:"status"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	AuditFields

	// Composed view populated on read when requested.
	DynamicFields map[string]any            `json:"dynamicFields,omitempty"`
	Relationships map[string][]Relationship `json:"relationships,omitempty"` // keyed by relationship type
}
