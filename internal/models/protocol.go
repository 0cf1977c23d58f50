package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// TVL and deposit figures go out as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Protocol is a yield-generating venue (lending market, AMM, optimizer).
// Name is the immutable slug used in URLs.
type Protocol struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	Name        string          `gorm:"size:64;uniqueIndex;not null" json:"name"`
	DisplayName string          `gorm:"size:128;not null" json:"displayName"`
	Description string          `gorm:"type:text" json:"description"`
	Category    string          `gorm:"size:64;not null;index" json:"category"`
	APY         float64         `gorm:"column:apy;not null" json:"apy"`
	TVL         decimal.Decimal `gorm:"column:tvl;type:numeric(38,2);not null" json:"tvl"`
	IsActive    bool            `gorm:"not null" json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (Protocol) TableName() string {
	return "protocols"
}

// ProtocolAPYSnapshot is one recorded APY/TVL reading of a protocol for a UTC day.
type ProtocolAPYSnapshot struct {
	ID         uint            `gorm:"primarykey" json:"id"`
	ProtocolID uint            `gorm:"not null;uniqueIndex:idx_snapshot_protocol_day" json:"protocolId"`
	APY        float64         `gorm:"column:apy;not null" json:"apy"`
	TVL        decimal.Decimal `gorm:"column:tvl;type:numeric(38,2);not null" json:"tvl"`
	RecordedAt time.Time       `gorm:"not null;uniqueIndex:idx_snapshot_protocol_day" json:"recordedAt"`
}

func (ProtocolAPYSnapshot) TableName() string {
	return "protocol_apy_snapshots"
}
