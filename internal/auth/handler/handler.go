package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"passport-login/internal/auth"
	"passport-login/internal/logger"
	"passport-login/internal/middleware"
	"passport-login/internal/model"
	"passport-login/internal/session"
	"passport-login/internal/token"
)

type Handler struct {
	users        model.UserStore
	sessionStore session.Store
	tokens       *token.JWT
	sessionTTL   time.Duration
	logger       *logger.Logger
}

func NewHandler(
	users model.UserStore,
	sessionStore session.Store,
	tokens *token.JWT,
	sessionTTL time.Duration,
	logger *logger.Logger,
) *Handler {
	return &Handler{
		users:        users,
		sessionStore: sessionStore,
		tokens:       tokens,
		sessionTTL:   sessionTTL,
		logger:       logger,
	}
}

// Account returns the session's profile. Protected by the session
// middleware.
func (h *Handler) Account(c *gin.Context) {
	profile, ok := middleware.ProfileFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Me resolves the bearer token's security id to a user record.
// Protected by the token middleware.
func (h *Handler) Me(c *gin.Context) {
	id, err := uuid.Parse(c.GetString("securityID"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token subject"})
		return
	}

	user, err := h.users.FindByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	// stored provider tokens stay out of API responses
	c.JSON(http.StatusOK, auth.MapProfile(user).Profile)
}

// Logout deletes the session and clears the cookie. Idempotent.
func (h *Handler) Logout(c *gin.Context) {
	cookie, err := c.Request.Cookie(session.CookieName)
	if err == nil && cookie.Value != "" {
		// best-effort delete
		_ = h.sessionStore.Delete(c.Request.Context(), cookie.Value)
		h.logger.Info("logout",
			"session_id", cookie.Value,
			"ip", c.ClientIP())
	}

	session.ClearCookie(c.Writer, session.CookieOptions{
		Path:     "/",
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	c.Status(http.StatusNoContent)
}
