package auth

import (
	"context"

	"churchledger/internal/core"
)

type identityKey struct{}

type identity struct {
	user core.User
	csrf string
}

// WithIdentity stores the authenticated user and its CSRF token.
func WithIdentity(ctx context.Context, u core.User, csrf string) context.Context {
	return context.WithValue(ctx, identityKey{}, identity{user: u, csrf: csrf})
}

// CurrentUser returns the authenticated user, if any.
func CurrentUser(ctx context.Context) (core.User, bool) {
	id, ok := ctx.Value(identityKey{}).(identity)
	return id.user, ok
}

// CSRFToken returns the token forms must echo back.
func CSRFToken(ctx context.Context) string {
	id, _ := ctx.Value(identityKey{}).(identity)
	return id.csrf
}
