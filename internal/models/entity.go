package models

import "encoding/json"

// EntityStatus tracks the lifecycle of an entity row.
type EntityStatus string

const (
	EntityActive   EntityStatus = "active"
	EntityArchived EntityStatus = "archived"
	EntityDeleted  EntityStatus = "deleted"
)

// Entity maps to the core_entities table.
type Entity struct {
	EntityID       string          `json:"entityID"`
	OrganizationID string          `json:"organizationID"`
	EntityType     string          `json:"entityType"`
	EntityName     string          `json:"entityName"`
	EntityCode     *string         `json:"entityCode"` // Nullable; unique per (org, type) when set
	SmartCode      string          `json:"smartCode"`
	Status         EntityStatus    `json:"status"`
	Metadata       json.RawMessage `json:"metadata"`
	AuditFields
}
