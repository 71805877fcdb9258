package auth

import (
	"net/http"

	"passport-login/internal/model"
)

// UserProfile is the normalized representation of an authenticated
// principal. SecurityID is the stable identifier downstream code keys
// on; Profile carries the full user record.
type UserProfile struct {
	SecurityID string     `json:"securityId"`
	Profile    model.User `json:"profile"`
}

// Redirect instructs the caller to send the client elsewhere instead
// of completing authentication, e.g. to a provider's authorization URL.
type Redirect struct {
	URL    string
	Status int
}

// NewRedirect builds a 302 redirect instruction.
func NewRedirect(url string) *Redirect {
	return &Redirect{URL: url, Status: http.StatusFound}
}

// MapProfile maps a stored User to a UserProfile. Every strategy maps
// its result through here so the security identifier is always the
// string form of the user id. Stored provider credentials are dropped:
// the profile ends up in session payloads and account responses, and
// access tokens must not travel with it.
func MapProfile(user model.User) *UserProfile {
	if len(user.Identities) > 0 {
		identities := make([]model.UserIdentity, len(user.Identities))
		copy(identities, user.Identities)
		for i := range identities {
			identities[i].Credentials = nil
		}
		user.Identities = identities
	}
	return &UserProfile{
		SecurityID: user.ID.String(),
		Profile:    user,
	}
}
