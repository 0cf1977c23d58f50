package services

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProtocolContribution is one line of a strategy breakdown.
type ProtocolContribution struct {
	Name         string  `json:"name"`
	DisplayName  string  `json:"displayName"`
	APY          float64 `json:"apy"`
	Allocation   float64 `json:"allocation"`
	Contribution float64 `json:"contribution"`
}

// StrategyBreakdown shows how much of a strategy's yield each protocol contributes.
type StrategyBreakdown struct {
	Name        string                 `json:"name"`
	DisplayName string                 `json:"displayName"`
	CurrentAPY  float64                `json:"currentAPY"`
	Protocols   []ProtocolContribution `json:"protocols"`
}

type HistoryPoint struct {
	Date string          `json:"date"`
	APY  float64         `json:"apy"`
	TVL  decimal.Decimal `json:"tvl"`
}

// ProtocolHistory is the daily APY series of one protocol.
type ProtocolHistory struct {
	Protocol string         `json:"protocol"`
	Days     int            `json:"days"`
	Points   []HistoryPoint `json:"points"`
}

// FaucetResult is the outcome of a faucet request. A cooldown is reported
// with Success false rather than as an error.
type FaucetResult struct {
	Success        bool      `json:"success"`
	Amount         int64     `json:"amount,omitempty"`
	TxHash         string    `json:"txHash,omitempty"`
	Error          string    `json:"error,omitempty"`
	CooldownUntil  time.Time `json:"cooldownUntil"`
	HoursRemaining int       `json:"-"`
}
