// Package middleware provides HTTP middleware components for the admin API.
package middleware

import (
	"context"
	"time"
)

// adminContextKey is the context key for authenticated admin key information.
// Using a struct type ensures type safety and prevents collisions with other context keys.
type adminContextKey struct{}

// AdminContext contains authenticated admin key information enriched in the request
// context by the authentication middleware after successful API key validation.
type AdminContext struct {
	// KeyID is the admin API key ID used for authentication (for audit logging)
	KeyID string

	// Name is the human-readable key name for logging and display
	Name string

	// AuthTime is the timestamp when authentication occurred (for latency tracking)
	AuthTime time.Time
}

// GetAdminContext extracts admin context from the request context.
// Returns (context, true) if authenticated, (empty, false) if not found.
func GetAdminContext(ctx context.Context) (AdminContext, bool) {
	adminCtx, ok := ctx.Value(adminContextKey{}).(AdminContext)

	return adminCtx, ok
}

// SetAdminContext adds admin context to the request context.
// Returns a new context with the admin context attached.
func SetAdminContext(ctx context.Context, adminCtx AdminContext) context.Context {
	return context.WithValue(ctx, adminContextKey{}, adminCtx)
}
