package app

import (
	"context"

	"github.com/gin-gonic/gin"

	"passport-login/internal/auth/handler"
	"passport-login/internal/auth/strategy"
	"passport-login/internal/auth/strategy/facebook"
	"passport-login/internal/auth/strategy/google"
	"passport-login/internal/auth/strategy/local"
	oauth2strategy "passport-login/internal/auth/strategy/oauth2"
	"passport-login/internal/config"
	"passport-login/internal/logger"
	"passport-login/internal/middleware"
	"passport-login/internal/repository"
	"passport-login/internal/sequence"
	"passport-login/internal/session"
	"passport-login/internal/token"
)

func setupHTTP(ctx context.Context, cfg *config.Config, log *logger.Logger) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	users := repository.NewUserRepository(infra.DB)
	identities := repository.NewIdentityRepository(infra.DB, users)

	var sessionStore session.Store
	if infra.Redis != nil {
		sessionStore = session.NewRedisStore(infra.Redis.Client)
	} else {
		sessionStore = session.NewMemoryStore()
	}

	tokens := token.NewJWT(cfg.JWTSecret)

	localStrategy := local.New(users)
	genericStrategy := oauth2strategy.New(
		strategy.GenericProviderName,
		cfg.Providers.OAuth2,
		identities,
	)

	registry := strategy.NewRegistry(localStrategy, genericStrategy)

	// provider extensions register under "oauth2-<name>"; the router
	// discovers them by name, so adding one is just another Register
	if cfg.Providers.Facebook.ClientID != "" {
		registry.Register(facebook.New(cfg.Providers.Facebook, identities))
	}

	if cfg.Providers.Google.ClientID != "" {
		googleStrategy, err := google.New(ctx, cfg.Providers.Google, identities)
		if err != nil {
			return nil, nil, err
		}
		registry.Register(googleStrategy)
	}

	router := strategy.NewRouter(registry)
	seq := sequence.New(router, cfg.Providers, log)

	authHandler := handler.NewHandler(
		users,
		sessionStore,
		tokens,
		cfg.SessionTTL,
		log,
	)

	authMiddleware := middleware.NewAuthMiddleware(sessionStore)

	// ----------------------------
	// Router
	// ----------------------------

	engine := gin.New()
	engine.Use(gin.Recovery())

	// ----------------------------
	// Public Routes
	// ----------------------------

	engine.POST("/signup", authHandler.Signup)
	engine.POST("/users/signup", authHandler.Signup)

	engine.POST("/login",
		seq.Authenticate(localStrategy),
		authHandler.FinishLogin,
	)

	engine.GET("/auth/thirdparty/:provider",
		authHandler.PrepareState,
		seq.Authenticate(genericStrategy),
		authHandler.FinishLogin,
	)

	engine.GET("/auth/thirdparty/:provider/callback",
		authHandler.ValidateState,
		seq.Authenticate(genericStrategy),
		authHandler.FinishLogin,
	)

	engine.POST("/auth/logout", authHandler.Logout)

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Protected Web Routes
	// ----------------------------

	web := engine.Group("/auth")
	web.Use(middleware.GinRequireAuth(authMiddleware))

	web.GET("/account", authHandler.Account)

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	api := engine.Group("/api")
	api.Use(middleware.GinRequireToken(tokens))

	api.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	api.GET("/me", authHandler.Me)

	// ----------------------------
	// Cleanup
	// ----------------------------

	return engine, func() error {
		return infra.DB.Close()
	}, nil
}
