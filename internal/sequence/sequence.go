package sequence

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"passport-login/internal/auth"
	"passport-login/internal/auth/strategy"
	"passport-login/internal/config"
	"passport-login/internal/logger"
)

// profileKey is where the authenticated profile lives in the gin
// context between authentication and controller invocation.
const profileKey = "auth.userProfile"

// Sequence is the per-request pipeline that runs between route
// resolution and controller invocation:
//
//  1. gin has already matched the route and parsed params;
//  2. the provider path param, when present, is copied into the query
//     bag so routing can read it uniformly;
//  3. per-provider options are bound into request-scoped context;
//  4. the strategy router authenticates the request, with strategy-
//     and profile-not-found conditions mapped to 401;
//  5. the controller runs with the populated security context;
//  6. gin sends the response.
type Sequence struct {
	router    *strategy.Router
	providers config.Providers
	logger    *logger.Logger
}

func New(router *strategy.Router, providers config.Providers, logger *logger.Logger) *Sequence {
	return &Sequence{
		router:    router,
		providers: providers,
		logger:    logger,
	}
}

// Authenticate returns middleware that authenticates the request with
// the route's bound default strategy, unless the request names a
// specific provider.
func (s *Sequence) Authenticate(fallback strategy.Strategy) gin.HandlerFunc {
	return func(c *gin.Context) {
		// provider name may live in path params; parsing already
		// happened, so copy it into the query where the router looks
		if p := c.Param("provider"); p != "" {
			q := c.Request.URL.Query()
			q.Set(strategy.ProviderNameParam, p)
			c.Request.URL.RawQuery = q.Encode()
		}

		ctx := config.WithProviders(c.Request.Context(), s.providers)
		c.Request = c.Request.WithContext(ctx)

		profile, redirect, err := s.router.Authenticate(ctx, c.Request, fallback)
		if err != nil {
			s.reject(c, err)
			return
		}

		if redirect != nil {
			c.Redirect(redirect.Status, redirect.URL)
			c.Abort()
			return
		}

		c.Set(profileKey, profile)
		c.Next()
	}
}

// reject maps authentication failures to responses. Unknown strategies
// and missing profiles are Unauthorized; everything else keeps its own
// status and message.
func (s *Sequence) reject(c *gin.Context, err error) {
	s.logger.Warn("authentication failed",
		"path", c.Request.URL.Path,
		"error", err.Error())

	switch {
	case errors.Is(err, auth.ErrProviderNotFound),
		errors.Is(err, auth.ErrUserNotFound),
		errors.Is(err, auth.ErrAuthentication):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "unauthorized",
		})
	case errors.Is(err, auth.ErrProvider):
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
			"error": "provider error",
		})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
	}
}

// ProfileFromContext extracts the authenticated profile placed by the
// sequence.
func ProfileFromContext(c *gin.Context) (*auth.UserProfile, bool) {
	v, ok := c.Get(profileKey)
	if !ok {
		return nil, false
	}
	profile, ok := v.(*auth.UserProfile)
	return profile, ok
}
