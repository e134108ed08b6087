package http

import (
	"github.com/foodguard/backend/config"
	"github.com/gin-gonic/gin"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, users gin.HandlerFunc) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		v1.GET("/suggestions", handler.Suggestions)
		v1.POST("/users", handler.Register)

		// Endpoints acting on behalf of a registered user
		authed := v1.Group("", users)
		{
			authed.GET("/users/me", handler.Me)
			authed.PUT("/users/me/sensitivities", handler.UpdateSensitivities)
			authed.POST("/scans", handler.Scan)
			authed.GET("/products/:barcode/safety", handler.CheckProduct)
		}

		v1.GET("/products/:barcode", handler.LookupProduct)
	}

	return router
}
