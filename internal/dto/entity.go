package dto

import (
	"encoding/json"
	"time"

	"github.com/herafoundry/hera_data_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Entity actions multiplexed through the single entities entry point.
const (
	ActionCreate = "CREATE"
	ActionRead   = "READ"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// EntityActionRequest is the multiplexed request envelope for the entities
// entry point. organization_id is required on every request; its absence is a
// request-validation error, never a silent default.
type EntityActionRequest struct {
	Action         string                        `json:"action" binding:"required,oneof=CREATE READ UPDATE DELETE"`
	ActorUserID    string                        `json:"actor_user_id,omitempty"`
	OrganizationID string                        `json:"organization_id" binding:"required,uuid"`
	Entity         *EntityPayload                `json:"entity,omitempty"`
	Dynamic        map[string]DynamicFieldInput  `json:"dynamic,omitempty"`
	Relationships  []EntityRelationshipInput     `json:"relationships,omitempty"`
	Options        *EntityOptions                `json:"options,omitempty"`
}

// EntityPayload carries entity header fields for CREATE/UPDATE, or the target
// id and filters for READ/DELETE.
type EntityPayload struct {
	EntityID   string          `json:"id,omitempty"`
	EntityType string          `json:"entity_type,omitempty"`
	EntityName string          `json:"entity_name,omitempty"`
	EntityCode string          `json:"entity_code,omitempty"`
	SmartCode  string          `json:"smart_code,omitempty" binding:"omitempty,smartcode"`
	Status     string          `json:"status,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

// DynamicFieldInput mirrors the typed-slot wire shape: field_type selects which
// field_value_<type> member must be populated.
type DynamicFieldInput struct {
	FieldType         string           `json:"field_type" binding:"required,oneof=text number boolean date json"`
	FieldValueText    *string          `json:"field_value_text,omitempty"`
	FieldValueNumber  *decimal.Decimal `json:"field_value_number,omitempty"`
	FieldValueBoolean *bool            `json:"field_value_boolean,omitempty"`
	FieldValueDate    *time.Time       `json:"field_value_date,omitempty"`
	FieldValueJSON    json.RawMessage  `json:"field_value_json,omitempty"`
	SmartCode         string           `json:"smart_code,omitempty" binding:"omitempty,smartcode"`
}

// RawValue returns the populated typed slot as an untyped value for the
// resolver, which enforces consistency with the declared field type.
func (in DynamicFieldInput) RawValue() any {
	switch {
	case in.FieldValueText != nil:
		return *in.FieldValueText
	case in.FieldValueNumber != nil:
		return *in.FieldValueNumber
	case in.FieldValueBoolean != nil:
		return *in.FieldValueBoolean
	case in.FieldValueDate != nil:
		return *in.FieldValueDate
	case in.FieldValueJSON != nil:
		return in.FieldValueJSON
	default:
		return nil
	}
}

// EntityRelationshipInput declares an edge to persist together with the entity.
type EntityRelationshipInput struct {
	ToEntityID       string          `json:"to_entity_id" binding:"required,uuid"`
	RelationshipType string          `json:"relationship_type" binding:"required"`
	SmartCode        string          `json:"smart_code,omitempty" binding:"omitempty,smartcode"`
	Data             json.RawMessage `json:"relationship_data,omitempty"`
}

// EntityOptions tunes reads and deletes.
type EntityOptions struct {
	IncludeDynamic       bool   `json:"include_dynamic,omitempty"`
	IncludeRelationships bool   `json:"include_relationships,omitempty"`
	Limit                int    `json:"limit,omitempty"`
	Offset               int    `json:"offset,omitempty"`
	StatusFilter         string `json:"status_filter,omitempty"`
	DeleteReason         string `json:"delete_reason,omitempty"`
	CascadeDelete        bool   `json:"cascade_delete,omitempty"`
	HardDelete           bool   `json:"hard_delete,omitempty"`
}

// EntityResponse is the composed entity view returned by the entities entry point.
type EntityResponse struct {
	EntityID       string                             `json:"id"`
	OrganizationID string                             `json:"organization_id"`
	EntityType     string                             `json:"entity_type"`
	EntityName     string                             `json:"entity_name"`
	EntityCode     string                             `json:"entity_code,omitempty"`
	SmartCode      string                             `json:"smart_code"`
	Status         string                             `json:"status"`
	Metadata       json.RawMessage                    `json:"metadata,omitempty"`
	DynamicFields  map[string]any                     `json:"dynamic_fields,omitempty"`
	Relationships  map[string][]RelationshipResponse  `json:"relationships,omitempty"`
	Warnings       []string                           `json:"warnings,omitempty"`
	CreatedAt      time.Time                          `json:"created_at"`
	UpdatedAt      time.Time                          `json:"updated_at"`
}

// ToEntityResponse converts a composed domain entity to its wire shape.
func ToEntityResponse(e *domain.Entity, warnings []string) EntityResponse {
	resp := EntityResponse{
		EntityID:       e.EntityID,
		OrganizationID: e.OrganizationID,
		EntityType:     e.EntityType,
		EntityName:     e.EntityName,
		EntityCode:     e.EntityCode,
		SmartCode:      e.SmartCode,
		Status:         string(e.Status),
		Metadata:       e.Metadata,
		DynamicFields:  e.DynamicFields,
		Warnings:       warnings,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.LastUpdatedAt,
	}
	if len(e.Relationships) > 0 {
		resp.Relationships = make(map[string][]RelationshipResponse, len(e.Relationships))
		for relType, edges := range e.Relationships {
			rs := make([]RelationshipResponse, len(edges))
			for i, edge := range edges {
				rs[i] = ToRelationshipResponse(edge)
			}
			resp.Relationships[relType] = rs
		}
	}
	return resp
}

// ToEntityResponses converts a slice of composed entities.
func ToEntityResponses(entities []domain.Entity) []EntityResponse {
	out := make([]EntityResponse, len(entities))
	for i := range entities {
		out[i] = ToEntityResponse(&entities[i], nil)
	}
	return out
}
