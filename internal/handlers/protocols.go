package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stacksave/internal/services"
)

// ListProtocols returns all active protocols
func (h *Handler) ListProtocols(c *gin.Context) {
	protocols, err := h.query.ListProtocols(c.Request.Context())
	if err != nil {
		internalError(c, err, "Failed to fetch protocols")
		return
	}
	c.JSON(http.StatusOK, protocols)
}

// GetTopProtocols returns the highest-APY protocols, ?limit= (default 4)
func (h *Handler) GetTopProtocols(c *gin.Context) {
	limit := queryInt(c, "limit", services.DefaultTopLimit)
	protocols, err := h.query.TopProtocols(c.Request.Context(), limit)
	if err != nil {
		internalError(c, err, "Failed to fetch top protocols")
		return
	}
	c.JSON(http.StatusOK, protocols)
}

// GetProtocolsByCategory filters by the optional :category segment
func (h *Handler) GetProtocolsByCategory(c *gin.Context) {
	protocols, err := h.query.ProtocolsByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		internalError(c, err, "Failed to fetch protocols by category")
		return
	}
	c.JSON(http.StatusOK, protocols)
}

// GetProtocolCategories returns the distinct categories of active protocols
func (h *Handler) GetProtocolCategories(c *gin.Context) {
	categories, err := h.query.ProtocolCategories(c.Request.Context())
	if err != nil {
		internalError(c, err, "Failed to fetch categories")
		return
	}
	c.JSON(http.StatusOK, categories)
}

// GetProtocol returns a single protocol by name
func (h *Handler) GetProtocol(c *gin.Context) {
	protocol, err := h.query.GetProtocol(c.Request.Context(), c.Param("name"))
	if err != nil {
		if services.IsNotFound(err) {
			notFound(c, "Protocol not found")
			return
		}
		internalError(c, err, "Failed to fetch protocol")
		return
	}
	c.JSON(http.StatusOK, protocol)
}

// GetProtocolHistory returns daily APY snapshots, ?days= (default 7)
func (h *Handler) GetProtocolHistory(c *gin.Context) {
	days := queryInt(c, "days", services.DefaultHistoryDays)
	history, err := h.query.ProtocolHistory(c.Request.Context(), c.Param("name"), days)
	if err != nil {
		if services.IsNotFound(err) {
			notFound(c, "Protocol not found")
			return
		}
		internalError(c, err, "Failed to fetch protocol history")
		return
	}
	c.JSON(http.StatusOK, history)
}
