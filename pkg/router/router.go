package router

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"thriftit/backend/internal/api"
	"thriftit/backend/internal/ws"
	"thriftit/backend/pkg/config"
	"thriftit/backend/pkg/di"
	"thriftit/backend/pkg/errors"
	"thriftit/backend/pkg/health"
	"thriftit/backend/pkg/logger"
	"thriftit/backend/pkg/metrics"
	"thriftit/backend/pkg/middleware"
)

// Router is the main router for the application
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
	Health    *health.Checker
	Config    *config.Config
}

// New creates a new router with the given container
func New(container *di.Container, checker *health.Checker) *Router {
	logger.SetGlobal(container.Logger)

	cfg := container.Config

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Use the logger middleware first to capture all requests
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(logger.Middleware(container.Logger))
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())

	rlOpts := middleware.DefaultRateLimiterOptions()
	rlOpts.Limit = rate.Limit(cfg.Security.RateLimit)
	rlOpts.Burst = cfg.Security.RateLimitBurst
	rateLimiter := middleware.NewRateLimiter(container.Logger, rlOpts)
	engine.Use(rateLimiter.Middleware())

	// Start the hub before any websocket connection can arrive
	go container.Hub.Run()

	return &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
		Health:    checker,
		Config:    cfg,
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	r.Engine.Use(corsMiddleware(r.Config.Security.AllowedOrigins))

	jwtAuth := middleware.JWTAuthMiddleware(r.Container.JWTService, r.Logger)
	optionalAuth := middleware.OptionalJWTAuthMiddleware(r.Container.JWTService, r.Logger)

	authHandler := api.NewAuthHandler(r.Container.UserService, r.Logger)
	userHandler := api.NewUserHandler(r.Container.UserService, r.Container.ImageService, r.Logger)
	productHandler := api.NewProductHandler(r.Container.ProductService, r.Container.WishlistService, r.Container.ImageService, r.Logger)
	wishlistHandler := api.NewWishlistHandler(r.Container.WishlistService, r.Logger)
	messageHandler := api.NewMessageHandler(r.Container.MessageService, r.Logger)
	uploadHandler := api.NewUploadHandler(r.Container.ImageService, r.Logger)
	statusHandler := api.NewStatusHandler(r.Container.DB, r.Container.Presence != nil, r.Logger)

	// Ops surface
	r.Engine.GET("/health", gin.WrapF(r.Health.HTTPHandler()))
	r.Engine.GET("/metrics", metrics.Handler())

	// Stored uploads
	r.Engine.GET("/uploads/:filename", uploadHandler.Serve)

	apiRoutes := r.Engine.Group("/api")
	{
		apiRoutes.GET("/status", statusHandler.Status)

		authRoutes := apiRoutes.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.GET("/me", jwtAuth, authHandler.Me)
			authRoutes.POST("/password", jwtAuth, authHandler.ChangePassword)
		}

		// Catalog reads are public so listings can be browsed before login.
		// The detail route still reads the token when one is sent, so the
		// ownership and wishlist flags reflect the signed-in viewer.
		apiRoutes.GET("/products", productHandler.List)
		apiRoutes.GET("/products/featured", productHandler.Featured)
		apiRoutes.GET("/products/:id", optionalAuth, productHandler.Get)

		protected := apiRoutes.Group("/")
		protected.Use(jwtAuth)
		{
			protected.GET("/users", userHandler.List)
			protected.POST("/profile", userHandler.UpdateProfile)

			protected.POST("/products", productHandler.Create)
			protected.DELETE("/products/:id", productHandler.Delete)

			protected.GET("/wishlist", wishlistHandler.List)
			protected.POST("/wishlist/:productId", wishlistHandler.Add)
			protected.DELETE("/wishlist/:productId", wishlistHandler.Remove)
			protected.DELETE("/wishlist", wishlistHandler.Clear)
			protected.GET("/wishlist/:productId/check", wishlistHandler.Check)

			protected.GET("/inbox", messageHandler.Inbox)
			protected.GET("/conversations/:userId", messageHandler.Conversation)
		}
	}

	// WebSocket route
	r.Engine.GET("/ws", func(c *gin.Context) {
		ws.ServeWS(r.Container.Hub, c)
	})
}

// corsMiddleware allows browser clients, including websocket upgrades.
// With a wildcard in the allowed list any origin is echoed back; otherwise
// only configured origins get the CORS headers.
func corsMiddleware(allowed []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		} else if !originAllowed(allowed, origin) {
			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(403)
				return
			}
			c.Next()
			return
		}

		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept, Accept-Encoding, X-CSRF-Token, Authorization, Origin, Upgrade, Connection, Cache-Control")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Upgrade, Connection")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func originAllowed(allowed []string, origin string) bool {
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}
