package middleware

import "context"

// contextKey is a private type for context values set by middleware.
// Using a custom type prevents collisions.
type contextKey string

const (
	loggerCtxKey = contextKey("logger")
	userIDKey    = contextKey("userID")
	authScopeKey = contextKey("authScope")
)

// AuthScope carries the tenant authorization extracted from the caller's token:
// the organizations the caller may act on, and whether it holds the
// cross-tenant privilege (service-to-service callers).
type AuthScope struct {
	OrganizationIDs []string
	CrossTenant     bool
}

// Authorizes reports whether the scope covers the given organization.
func (s AuthScope) Authorizes(organizationID string) bool {
	if s.CrossTenant {
		return true
	}
	for _, id := range s.OrganizationIDs {
		if id == organizationID {
			return true
		}
	}
	return false
}

// GetUserIDFromCtx retrieves the authenticated user ID from the context.
func GetUserIDFromCtx(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// GetAuthScopeFromCtx retrieves the tenant authorization scope from the context.
// The zero scope authorizes nothing.
func GetAuthScopeFromCtx(ctx context.Context) (AuthScope, bool) {
	scope, ok := ctx.Value(authScopeKey).(AuthScope)
	return scope, ok
}

// WithAuth returns a context carrying the given actor and scope. Used by tests
// and internal callers that bypass the HTTP middleware.
func WithAuth(ctx context.Context, userID string, scope AuthScope) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, authScopeKey, scope)
}
