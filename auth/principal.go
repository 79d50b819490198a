package auth

import (
	"context"

	"github.com/guildboard/guildboard/token"
)

// PrincipalKind identifies which credential class authenticated a request.
type PrincipalKind string

const (
	// PrincipalAPISecret is the trusted backend-to-backend caller.
	PrincipalAPISecret PrincipalKind = "api-secret"
	// PrincipalOAuth is a browser user with a live Discord session.
	PrincipalOAuth PrincipalKind = "oauth"
)

// Principal is the resolved identity attached to an authenticated request.
// Claims is nil for the api-secret principal.
type Principal struct {
	Kind   PrincipalKind
	Claims *token.SessionClaims
}

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const contextKeyPrincipal ContextKey = "principal"

// WithPrincipal attaches the resolved principal to ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKeyPrincipal, p)
}

// PrincipalFrom extracts the principal placed by the authentication
// middleware. ok is false on unauthenticated requests.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKeyPrincipal).(Principal)
	return p, ok
}
