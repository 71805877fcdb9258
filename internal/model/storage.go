package model

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique constraint would be violated,
// e.g. signup with an already registered email.
var ErrDuplicate = errors.New("duplicate record")

// UserStore persists User and UserCredentials records.
type UserStore interface {
	Create(ctx context.Context, user User) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id uuid.UUID) (User, error)
	CreateCredentials(ctx context.Context, creds UserCredentials) (UserCredentials, error)
	CredentialsByEmail(ctx context.Context, email string) (UserCredentials, error)
}

// IdentityStore links external identities to users.
type IdentityStore interface {
	// FindOrCreateUser returns the User linked to the given external
	// profile, creating the User and the identity link when none
	// exists. Idempotent: presenting the same (provider,
	// provider_user_id) twice yields the same User.
	FindOrCreateUser(ctx context.Context, profile ProviderProfile) (User, error)
}
