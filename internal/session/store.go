package session

import (
	"context"
	"time"

	"passport-login/internal/auth"
)

// Session represents an authenticated user session. The profile is
// copied in verbatim at login and never mutated afterwards.
type Session struct {
	SessionID string           `json:"sessionId"`
	Profile   auth.UserProfile `json:"profile"`
	CreatedAt time.Time        `json:"createdAt"`
	ExpiresAt time.Time        `json:"expiresAt"` // absolute expiry time
}

// Store defines how sessions are stored and retrieved.
// Get returns (nil, nil) for unknown session ids.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}
