package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"passport-login/internal/token"
)

// GinRequireToken protects API routes with a bearer JWT instead of a
// session cookie. The parsed security id lands in the gin context
// under "securityID".
func GinRequireToken(jwt *token.JWT) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing bearer token",
			})
			return
		}

		securityID, err := jwt.Parse(strings.TrimPrefix(header, prefix))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid token",
			})
			return
		}

		c.Set("securityID", securityID)
		c.Next()
	}
}
