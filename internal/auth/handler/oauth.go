package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PrepareState runs before the sequence on the provider-redirect leg:
// it mints the state parameter, pins it in a short-lived cookie, and
// places it in the query so the strategy embeds it in the
// authorization URL.
func (h *Handler) PrepareState(c *gin.Context) {
	state := generateState(c)

	q := c.Request.URL.Query()
	q.Set("state", state)
	c.Request.URL.RawQuery = q.Encode()

	c.Next()
}

// ValidateState runs before the sequence on the callback leg and
// rejects responses whose state does not match the pinned cookie.
func (h *Handler) ValidateState(c *gin.Context) {
	if !validateState(c) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid state",
		})
		return
	}

	// providers report user-denied consent via error instead of code
	if errParam := c.Query("error"); errParam != "" {
		h.logger.Warn("oauth callback returned error",
			"provider", c.Param("provider"),
			"error", errParam,
			"desc", c.Query("error_description"))
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}

	c.Next()
}
