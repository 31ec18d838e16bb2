package models

import (
	"encoding/json"
	"time"
)

// Relationship maps to the core_relationships table.
type Relationship struct {
	RelationshipID   string          `json:"relationshipID"`
	OrganizationID   string          `json:"organizationID"`
	FromEntityID     string          `json:"fromEntityID"`
	ToEntityID       string          `json:"toEntityID"`
	RelationshipType string          `json:"relationshipType"`
	SmartCode        string          `json:"smartCode"`
	Data             json.RawMessage `json:"relationshipData"`
	CreatedAt        time.Time       `json:"createdAt"`
	CreatedBy        string          `json:"createdBy"`
}
