package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RiskLevel of a strategy as shown to users.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigher RiskLevel = "Higher"
)

// Valid reports whether r is one of the known levels.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigher:
		return true
	}
	return false
}

// Strategy is a vault allocating deposits across a weighted set of protocols.
type Strategy struct {
	ID          uint               `gorm:"primarykey" json:"id"`
	Name        string             `gorm:"size:64;uniqueIndex;not null" json:"name"`
	DisplayName string             `gorm:"size:128;not null" json:"displayName"`
	Description string             `gorm:"type:text" json:"description"`
	APYCurrent  float64            `gorm:"column:apy_current;not null" json:"apyCurrent"`
	RiskLevel   RiskLevel          `gorm:"size:16;not null" json:"riskLevel"`
	LockPeriod  int                `gorm:"not null;default:0" json:"lockPeriod"`
	MinDeposit  decimal.Decimal    `gorm:"type:numeric(38,2);not null" json:"minDeposit"`
	Category    string             `gorm:"size:64;not null" json:"category"`
	IsFeatured  bool               `gorm:"not null" json:"isFeatured"`
	IsHot       bool               `gorm:"not null" json:"isHot"`
	TVL         decimal.Decimal    `gorm:"column:tvl;type:numeric(38,2);not null" json:"tvl"`
	Protocols   []StrategyProtocol `gorm:"foreignKey:StrategyID;constraint:OnDelete:CASCADE" json:"protocols"`
	CreatedAt   time.Time          `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time          `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (Strategy) TableName() string {
	return "strategies"
}

// StrategyProtocol links a strategy to one protocol with a percentage weight.
type StrategyProtocol struct {
	ID         uint     `gorm:"primarykey" json:"id"`
	StrategyID uint     `gorm:"not null;uniqueIndex:idx_strategy_protocol" json:"strategyId"`
	ProtocolID uint     `gorm:"not null;uniqueIndex:idx_strategy_protocol" json:"protocolId"`
	Allocation float64  `gorm:"not null" json:"allocation"`
	Protocol   Protocol `gorm:"foreignKey:ProtocolID;constraint:OnDelete:CASCADE" json:"protocol"`
}

func (StrategyProtocol) TableName() string {
	return "strategy_protocols"
}

// AllocationTotal sums the allocation weights of the loaded protocol links.
func (s *Strategy) AllocationTotal() float64 {
	var total float64
	for _, sp := range s.Protocols {
		total += sp.Allocation
	}
	return total
}
