package session

import (
	"net/http"
	"time"
)

// CookieName is the default session cookie. The __Host- prefix requires
// Secure, Path=/ and no Domain, which normalize enforces.
const CookieName = "__Host-session"

// CookieOptions defines how session cookies are issued.
type CookieOptions struct {
	Name     string // defaults to CookieName
	Path     string
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
	Domain   string // should usually be empty for __Host- cookies
}

// normalize applies safe defaults without breaking callers
func (o CookieOptions) normalize() CookieOptions {
	if o.Name == "" {
		o.Name = CookieName
	}
	if o.Path == "" {
		o.Path = "/" // required for __Host-
	}
	if !o.HttpOnly {
		o.HttpOnly = true // secure default
	}
	return o
}

func (o CookieOptions) cookie(sessionID string) *http.Cookie {
	return &http.Cookie{
		Name:     o.Name,
		Value:    sessionID,
		Path:     o.Path,
		Domain:   o.Domain,
		HttpOnly: o.HttpOnly,
		Secure:   o.Secure,
		SameSite: o.SameSite,
	}
}

// SetCookie issues the session cookie to the client.
func SetCookie(
	w http.ResponseWriter,
	sessionID string,
	expiresAt time.Time,
	opts CookieOptions,
) {
	opts = opts.normalize()

	c := opts.cookie(sessionID)
	c.Expires = expiresAt
	http.SetCookie(w, c)
}

// ClearCookie removes the session cookie from the client.
func ClearCookie(
	w http.ResponseWriter,
	opts CookieOptions,
) {
	opts = opts.normalize()

	c := opts.cookie("")
	c.MaxAge = -1
	http.SetCookie(w, c)
}
