package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User is the identity record. Created on signup or on first successful
// third-party login.
type User struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
	Name     string    `json:"name"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Identities are the linked third-party profiles, zero or more,
	// one per provider.
	Identities []UserIdentity `json:"identities,omitempty"`
}

// UserCredentials is the local-login secret. The hash is never
// serialized into responses.
type UserCredentials struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"userId"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserIdentity is a linked third-party profile. Its lifecycle is
// independent of the User once created.
type UserIdentity struct {
	ID             uuid.UUID       `json:"id"`
	Provider       string          `json:"provider"` // e.g. "oauth2-google"
	ProviderUserID string          `json:"providerUserId"`
	Profile        json.RawMessage `json:"profile"`               // opaque provider payload
	Credentials    json.RawMessage `json:"credentials,omitempty"` // opaque token payload
	AuthScheme     string          `json:"authScheme"`
	Created        time.Time       `json:"created"`
	UserID         uuid.UUID       `json:"userId"`
}
