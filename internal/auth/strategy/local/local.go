package local

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"passport-login/internal/auth"
	"passport-login/internal/auth/credentials"
	"passport-login/internal/auth/strategy"
	"passport-login/internal/model"
)

const strategyName = "local"

var _ strategy.Strategy = (*Strategy)(nil)

// Strategy authenticates a form-encoded email+password pair against
// the identity store.
type Strategy struct {
	users model.UserStore
}

func New(users model.UserStore) *Strategy {
	return &Strategy{users: users}
}

func (s *Strategy) Name() string {
	return strategyName
}

// Authenticate looks up the user by email (with linked identities),
// verifies the password hash, and maps the user to a profile keyed by
// the string form of the user id.
func (s *Strategy) Authenticate(
	ctx context.Context,
	r *http.Request,
) (*auth.UserProfile, *auth.Redirect, error) {

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		return nil, nil, auth.ErrAuthentication
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil, auth.ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("local strategy lookup failed: %w", err)
	}

	creds, err := s.users.CredentialsByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			// user exists but has no local credentials (third-party only)
			return nil, nil, auth.ErrAuthentication
		}
		return nil, nil, fmt.Errorf("local strategy credentials lookup failed: %w", err)
	}

	if err := credentials.VerifyPassword(creds.PasswordHash, password); err != nil {
		return nil, nil, auth.ErrAuthentication
	}

	return auth.MapProfile(user), nil, nil
}
