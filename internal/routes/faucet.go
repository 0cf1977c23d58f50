package routes

import (
	"github.com/gin-gonic/gin"

	"stacksave/internal/handlers"
	"stacksave/internal/middleware"
)

// SetupFaucetRoutes sets up the faucet routes behind a per-IP rate limiter.
// A zero limit disables the limiter.
func SetupFaucetRoutes(r *gin.RouterGroup, h *handlers.Handler, limit middleware.RateLimiterConfig) {
	faucet := r.Group("/faucet")
	if limit.RequestsPerSecond > 0 && limit.Burst > 0 {
		faucet.Use(middleware.RateLimiterMiddleware(limit))
	}
	{
		faucet.POST("/request", h.RequestFaucetTokens)
		faucet.GET("/history/:walletAddress", h.GetFaucetHistory)
	}
}
