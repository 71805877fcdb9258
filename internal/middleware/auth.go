package middleware

import (
	"context"
	"net/http"
	"time"

	"passport-login/internal/auth"
	"passport-login/internal/session"
)

// unexported, collision-proof context key
type profileContextKeyType struct{}

var profileKey = profileContextKeyType{}

// ProfileFromContext extracts the authenticated profile from context.
func ProfileFromContext(ctx context.Context) (*auth.UserProfile, bool) {
	p, ok := ctx.Value(profileKey).(*auth.UserProfile)
	return p, ok
}

type AuthMiddleware struct {
	Store session.Store
}

func NewAuthMiddleware(store session.Store) *AuthMiddleware {
	return &AuthMiddleware{Store: store}
}

func (a *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Read session cookie
		cookie, err := r.Cookie(session.CookieName)
		if err != nil || cookie.Value == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		sessionID := cookie.Value

		// 2. Load session
		sess, err := a.Store.Get(r.Context(), sessionID)
		if err != nil || sess == nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// 3. Enforce session expiry
		if time.Now().After(sess.ExpiresAt) {
			_ = a.Store.Delete(r.Context(), sessionID)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// 4. Attach profile to context
		ctx := context.WithValue(r.Context(), profileKey, &sess.Profile)

		// 5. Continue request
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
