package bearerapi

import "context"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const claimsKey contextKey = "bearerapi.claims"

// WithClaims returns a new context carrying the validated claims.
// The middleware uses this to make claims available to handlers.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext extracts the validated claims from the context.
// Returns nil and false when the request did not pass the middleware.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}
