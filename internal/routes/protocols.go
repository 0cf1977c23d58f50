package routes

import (
	"github.com/gin-gonic/gin"

	"stacksave/internal/handlers"
)

// SetupProtocolRoutes sets up the read-only protocol routes
func SetupProtocolRoutes(r *gin.RouterGroup, h *handlers.Handler) {
	protocols := r.Group("/protocols")
	{
		protocols.GET("", h.ListProtocols)
		protocols.GET("/top", h.GetTopProtocols)
		protocols.GET("/category", h.GetProtocolsByCategory)
		protocols.GET("/category/:category", h.GetProtocolsByCategory)
		protocols.GET("/categories", h.GetProtocolCategories)
		protocols.GET("/:name", h.GetProtocol)
		protocols.GET("/:name/history", h.GetProtocolHistory)
	}
}
