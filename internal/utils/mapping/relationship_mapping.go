package mapping

import (
	"github.com/herafoundry/hera_data_engine/internal/core/domain"
	"github.com/herafoundry/hera_data_engine/internal/models"
)

// ToModelRelationship converts a domain Relationship to a model Relationship
func ToModelRelationship(d domain.Relationship) models.Relationship {
	return models.Relationship{
		RelationshipID:   d.RelationshipID,
		OrganizationID:   d.OrganizationID,
		FromEntityID:     d.FromEntityID,
		ToEntityID:       d.ToEntityID,
		RelationshipType: d.RelationshipType,
		SmartCode:        d.SmartCode,
		Data:             d.Data,
		CreatedAt:        d.CreatedAt,
		CreatedBy:        d.CreatedBy,
	}
}

// ToDomainRelationship converts a model Relationship to a domain Relationship
func ToDomainRelationship(m models.Relationship) domain.Relationship {
	return domain.Relationship{
		RelationshipID:   m.RelationshipID,
		OrganizationID:   m.OrganizationID,
		FromEntityID:     m.FromEntityID,
		ToEntityID:       m.ToEntityID,
		RelationshipType: m.RelationshipType,
		SmartCode:        m.SmartCode,
		Data:             m.Data,
		CreatedAt:        m.CreatedAt,
		CreatedBy:        m.CreatedBy,
	}
}

// ToDomainRelationshipSlice converts a slice of model relationships.
func ToDomainRelationshipSlice(ms []models.Relationship) []domain.Relationship {
	out := make([]domain.Relationship, len(ms))
	for i, m := range ms {
		out[i] = ToDomainRelationship(m)
	}
	return out
}
