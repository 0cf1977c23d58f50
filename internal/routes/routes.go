package routes

import (
	"github.com/gin-gonic/gin"

	"stacksave/internal/handlers"
	"stacksave/internal/metrics"
	"stacksave/internal/middleware"
)

// RouterConfig carries the settings the router needs from the process config.
type RouterConfig struct {
	Production     bool
	APIPrefix      string
	AllowedOrigins []string
	FaucetLimit    middleware.RateLimiterConfig
}

// SetupRouter initializes and returns the Gin router with all routes configured
func SetupRouter(cfg RouterConfig, h *handlers.Handler) *gin.Engine {
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(cfg.Production),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.ErrorHandler(cfg.Production),
	)

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group(cfg.APIPrefix)
	api.GET("/health", handlers.Health)

	SetupProtocolRoutes(api, h)
	SetupStrategyRoutes(api, h)
	SetupFaucetRoutes(api, h, cfg.FaucetLimit)

	return r
}
