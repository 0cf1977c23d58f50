package main

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stacksave/pkg/config"
)

func TestHandleGrant(t *testing.T) {
	t.Run("Valid Event", func(t *testing.T) {
		msg, err := json.Marshal(config.GrantEvent{
			WalletAddress: "0x1234567890abcdef1234567890abcdef12345678",
			Amount:        10000,
			TxHash:        "0xabc",
			Timestamp:     time.Now().UTC(),
		})
		require.NoError(t, err)
		assert.NoError(t, handleGrant(msg))
	})

	t.Run("Malformed Event Is Dropped", func(t *testing.T) {
		assert.NoError(t, handleGrant([]byte("{not json")))
	})
}
