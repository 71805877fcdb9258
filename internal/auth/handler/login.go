package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"passport-login/internal/sequence"
	"passport-login/internal/session"
)

// FinishLogin materializes the session for a request the sequence has
// already authenticated: the profile is copied verbatim into the
// session store, written exactly once.
//
// Browser clients get a redirect to the authenticated landing page;
// API clients asking for JSON get a bearer token instead.
func (h *Handler) FinishLogin(c *gin.Context) {
	profile, ok := sequence.ProfileFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sessionID, err := session.GenerateID()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session error"})
		return
	}

	now := time.Now()
	expiresAt := now.Add(h.sessionTTL)

	if err := h.sessionStore.Create(c.Request.Context(), session.Session{
		SessionID: sessionID,
		Profile:   *profile,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session error"})
		return
	}

	session.SetCookie(c.Writer, sessionID, expiresAt, session.CookieOptions{
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("login success",
		"security_id", profile.SecurityID,
		"ip", c.ClientIP())

	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		accessToken, err := h.tokens.Generate(profile.SecurityID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "logged_in",
			"token":  accessToken,
		})
		return
	}

	c.Redirect(http.StatusFound, "/auth/account")
}
