package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stacksave/internal/services"
)

// ListStrategies returns every strategy with its protocol allocations
func (h *Handler) ListStrategies(c *gin.Context) {
	strategies, err := h.query.ListStrategies(c.Request.Context())
	if err != nil {
		internalError(c, err, "Failed to fetch strategies")
		return
	}
	c.JSON(http.StatusOK, strategies)
}

// GetHotVaults returns hot or featured strategies, ?limit= (default 6)
func (h *Handler) GetHotVaults(c *gin.Context) {
	limit := queryInt(c, "limit", services.DefaultHotLimit)
	strategies, err := h.query.HotVaults(c.Request.Context(), limit)
	if err != nil {
		internalError(c, err, "Failed to fetch hot vaults")
		return
	}
	c.JSON(http.StatusOK, strategies)
}

// GetStrategy returns a single strategy by name
func (h *Handler) GetStrategy(c *gin.Context) {
	strategy, err := h.query.GetStrategy(c.Request.Context(), c.Param("name"))
	if err != nil {
		if services.IsNotFound(err) {
			notFound(c, "Strategy not found")
			return
		}
		internalError(c, err, "Failed to fetch strategy")
		return
	}
	c.JSON(http.StatusOK, strategy)
}

// GetStrategyBreakdown returns each protocol's weighted share of the strategy's yield
func (h *Handler) GetStrategyBreakdown(c *gin.Context) {
	breakdown, err := h.query.StrategyBreakdown(c.Request.Context(), c.Param("name"))
	if err != nil {
		if services.IsNotFound(err) {
			notFound(c, "Strategy not found")
			return
		}
		internalError(c, err, "Failed to fetch strategy breakdown")
		return
	}
	c.JSON(http.StatusOK, breakdown)
}
