package routes

import (
	"github.com/gin-gonic/gin"

	"stacksave/internal/handlers"
)

// SetupStrategyRoutes sets up the strategy (vault) routes
func SetupStrategyRoutes(r *gin.RouterGroup, h *handlers.Handler) {
	strategies := r.Group("/strategies")
	{
		strategies.GET("", h.ListStrategies)
		strategies.GET("/hot", h.GetHotVaults)
		strategies.GET("/:name", h.GetStrategy)
		strategies.GET("/:name/breakdown", h.GetStrategyBreakdown)
	}
}
