package domain

import (
	"encoding/json"
	"time"
)

// Relationship is a typed, directed, timestamped edge between two entities of the
// same organization. Edges are append-only; for exclusive types the newest edge
// per (from, type) is the current one and older edges remain as an audit trail.
type Relationship struct {
	RelationshipID   string          `json:"relationshipID"` // Primary Key (UUID)
	OrganizationID   string          `json:"organizationID"`
	FromEntityID     string          `json:"fromEntityID"`
	ToEntityID       string          `json:"toEntityID"`
	RelationshipType string          `json:"relationshipType"` // e.g. has_status, parent_of
	SmartCode        string          `json:"smartCode"`
	Data             json.RawMessage `json:"data,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	CreatedBy        string          `json:"createdBy"`

	// CrossTenantViolation is set on read when the edge's target resolves to a row
	// outside the caller's organization. Such edges are reported, never followed.
	CrossTenantViolation bool `json:"crossTenantViolation,omitempty"`

	// IsCurrent is set on read: the newest edge per (from, type) for exclusive
	// relationship types, every edge otherwise.
	IsCurrent bool `json:"isCurrent"`
}
