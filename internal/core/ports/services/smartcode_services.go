package services

import (
	"context"

	"github.com/herafoundry/hera_data_engine/internal/core/domain"
)

// SmartCodeSvcFacade resolves smart codes to the behavior their registry family
// declares. Behavior is data loaded from the registry, never engine control flow.
type SmartCodeSvcFacade interface {
	// Behavior parses the code and returns the merged behavior descriptor of the
	// longest matching registry prefix. Unregistered families get a zero
	// descriptor, not an error; malformed codes fail with ErrValidation.
	Behavior(ctx context.Context, code string) (domain.SmartCodeBehavior, error)

	// IsExclusiveRelationship reports whether any registry family declares the
	// relationship type single-active-edge (e.g. has_status).
	IsExclusiveRelationship(ctx context.Context, relationshipType string) bool

	Register(ctx context.Context, entry domain.SmartCodeEntry, actorUserID string) error
	Reload(ctx context.Context) error
}
