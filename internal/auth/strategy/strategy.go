package strategy

import (
	"context"
	"net/http"

	"passport-login/internal/auth"
)

// Strategy is a pluggable mechanism that authenticates a request
// against one identity source. Exactly one of profile and redirect is
// non-nil on success; a redirect means the client must complete an
// external round-trip first.
type Strategy interface {
	// Name returns the strategy identifier, e.g. "local",
	// "oauth2-google".
	Name() string

	Authenticate(ctx context.Context, r *http.Request) (*auth.UserProfile, *auth.Redirect, error)
}
