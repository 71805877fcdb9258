package model

import "encoding/json"

// ProviderProfile is the normalized identity a provider strategy
// extracts from an external login. It contains facts only, no
// decisions.
type ProviderProfile struct {
	Provider       string          // provider tag, e.g. "oauth2-google"
	ProviderUserID string          // provider-scoped unique user identifier
	Email          string
	Name           string
	Username       string
	AuthScheme     string          // e.g. "oauth2"
	Raw            json.RawMessage // provider payload as received
	Credentials    json.RawMessage // token payload, optional
}
