package dto

import (
	"encoding/json"
	"time"

	"github.com/herafoundry/hera_data_engine/internal/core/domain"
)

// ActionUpsert is the single relationship mutation action.
const ActionUpsert = "UPSERT"

// UpsertRelationshipRequest creates or supersedes a typed, directed edge.
type UpsertRelationshipRequest struct {
	Action           string          `json:"action,omitempty" binding:"omitempty,oneof=UPSERT"`
	ActorUserID      string          `json:"actor_user_id,omitempty"`
	OrganizationID   string          `json:"organization_id" binding:"required,uuid"`
	FromEntityID     string          `json:"from_entity_id" binding:"required,uuid"`
	ToEntityID       string          `json:"to_entity_id" binding:"required,uuid"`
	RelationshipType string          `json:"relationship_type" binding:"required"`
	SmartCode        string          `json:"smart_code" binding:"required,smartcode"`
	Metadata         json.RawMessage `json:"metadata,omitempty"`
}

// QueryRelationshipsParams filters the edge log.
type QueryRelationshipsParams struct {
	OrganizationID   string `form:"organization_id" binding:"required,uuid"`
	FromEntityID     string `form:"from_entity_id" binding:"omitempty,uuid"`
	ToEntityID       string `form:"to_entity_id" binding:"omitempty,uuid"`
	RelationshipType string `form:"relationship_type"`
}

// RelationshipResponse is the wire shape of one edge.
type RelationshipResponse struct {
	RelationshipID       string          `json:"id"`
	OrganizationID       string          `json:"organization_id"`
	FromEntityID         string          `json:"from_entity_id"`
	ToEntityID           string          `json:"to_entity_id"`
	RelationshipType     string          `json:"relationship_type"`
	SmartCode            string          `json:"smart_code"`
	Data                 json.RawMessage `json:"relationship_data,omitempty"`
	IsCurrent            bool            `json:"is_current"`
	CrossTenantViolation bool            `json:"cross_tenant_violation,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

// ToRelationshipResponse converts a domain edge to its wire shape.
func ToRelationshipResponse(r domain.Relationship) RelationshipResponse {
	return RelationshipResponse{
		RelationshipID:       r.RelationshipID,
		OrganizationID:       r.OrganizationID,
		FromEntityID:         r.FromEntityID,
		ToEntityID:           r.ToEntityID,
		RelationshipType:     r.RelationshipType,
		SmartCode:            r.SmartCode,
		Data:                 r.Data,
		IsCurrent:            r.IsCurrent,
		CrossTenantViolation: r.CrossTenantViolation,
		CreatedAt:            r.CreatedAt,
	}
}

// QueryRelationshipsResponse lists edges newest-first; for exclusive types the
// first edge per (from, type) is the current one.
type QueryRelationshipsResponse struct {
	Relationships []RelationshipResponse `json:"relationships"`
}
