package models

import "time"

// FaucetRequest is one token grant. Rows are append-only.
type FaucetRequest struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	WalletAddress string    `gorm:"size:42;not null;index:idx_faucet_wallet_time,priority:1" json:"walletAddress"`
	Amount        int64     `gorm:"not null" json:"amount"`
	TxHash        string    `gorm:"size:66;not null" json:"txHash"`
	Timestamp     time.Time `gorm:"not null;index:idx_faucet_wallet_time,priority:2,sort:desc" json:"timestamp"`
}

func (FaucetRequest) TableName() string {
	return "faucet_requests"
}
