package auth

import "context"

type contextKey string

const securityContextKey contextKey = "security-context"

// WithSecurityContext attaches the identity to the request context.
// The attach is set-if-absent: an identity already present is never
// overwritten, so the authenticator stays idempotent across the chain.
func WithSecurityContext(ctx context.Context, identity Identity) context.Context {
	if _, ok := SecurityContextFrom(ctx); ok {
		return ctx
	}
	return context.WithValue(ctx, securityContextKey, identity)
}

// SecurityContextFrom returns the identity attached to the request, if any.
func SecurityContextFrom(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(securityContextKey).(Identity)
	return identity, ok
}
