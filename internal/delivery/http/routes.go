package http

import (
	"github.com/cartwise/backend/config"
	"github.com/cartwise/backend/internal/observability"
	"github.com/gin-gonic/gin"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger *observability.Logger) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP, cfg.RateLimit.Burst))
	{
		products := v1.Group("/products")
		{
			products.POST("/search", handler.SearchProducts)
			products.GET("/filters", handler.GetFilters)
			products.DELETE("/filters", handler.ClearFilters)
			products.GET("/recommendations", handler.Recommendations)
			products.GET("/trending", handler.Trending)
			products.GET("/categories", handler.Categories)
			products.GET("/stats", handler.Stats)
		}

		chat := v1.Group("/chat")
		{
			chat.POST("/classify", handler.Classify)
		}
	}

	return router
}
