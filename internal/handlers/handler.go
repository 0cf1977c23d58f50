package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"stacksave/internal/services"
)

// Handler serves the HTTP API on top of the query and faucet services.
type Handler struct {
	query  *services.QueryService
	faucet *services.FaucetService
}

func New(query *services.QueryService, faucet *services.FaucetService) *Handler {
	return &Handler{query: query, faucet: faucet}
}

// queryInt reads the leading digits of a query parameter, so "3abc" is 3.
// It falls back to def when there are no digits or the value is not positive.
func queryInt(c *gin.Context, key string, def int) int {
	v := strings.TrimSpace(c.Query(key))
	end := 0
	for end < len(v) && v[end] >= '0' && v[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(v[:end])
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// internalError hands err to the error middleware. message is what clients
// see in production.
func internalError(c *gin.Context, err error, message string) {
	_ = c.Error(err).SetType(gin.ErrorTypePrivate).SetMeta(message)
	c.Abort()
}

func notFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, gin.H{"error": message})
}
