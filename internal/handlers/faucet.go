package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"stacksave/internal/services"
)

// FaucetRequestBody is the body of POST /faucet/request
type FaucetRequestBody struct {
	WalletAddress string `json:"walletAddress"`
}

// RequestFaucetTokens grants demo tokens, or answers 429 while the wallet cools down
func (h *Handler) RequestFaucetTokens(c *gin.Context) {
	var body FaucetRequestBody
	// An empty body is treated like {} and reported as a missing address.
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	if body.WalletAddress == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Wallet address is required"})
		return
	}
	if !services.IsWalletAddress(body.WalletAddress) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid wallet address format"})
		return
	}

	result, err := h.faucet.RequestTokens(c.Request.Context(), body.WalletAddress)
	if err != nil {
		internalError(c, err, "Failed to process faucet request")
		return
	}

	if !result.Success {
		c.JSON(http.StatusTooManyRequests, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetFaucetHistory returns the last grants of a wallet, newest first
func (h *Handler) GetFaucetHistory(c *gin.Context) {
	wallet := c.Param("walletAddress")
	if !services.IsWalletAddress(wallet) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid wallet address format"})
		return
	}

	history, err := h.faucet.GetHistory(c.Request.Context(), wallet)
	if err != nil {
		internalError(c, err, "Failed to fetch faucet history")
		return
	}
	c.JSON(http.StatusOK, history)
}
