package seed

import (
	"github.com/shopspring/decimal"

	"stacksave/internal/models"
)

// Allocation names a strategy's weight in one protocol by slug.
type Allocation struct {
	Strategy   string
	Protocol   string
	Allocation float64
}

// Dataset is a self-contained set of demo rows.
type Dataset struct {
	Protocols   []models.Protocol
	Strategies  []models.Strategy
	Allocations []Allocation
}

func protocol(name, displayName, description, category string, apy float64, tvl int64) models.Protocol {
	return models.Protocol{
		Name:        name,
		DisplayName: displayName,
		Description: description,
		Category:    category,
		APY:         apy,
		TVL:         decimal.NewFromInt(tvl),
		IsActive:    true,
	}
}

func strategy(name, displayName, description string, apy float64, risk models.RiskLevel, lock int, minDeposit int64, category string, featured, hot bool, tvl int64) models.Strategy {
	return models.Strategy{
		Name:        name,
		DisplayName: displayName,
		Description: description,
		APYCurrent:  apy,
		RiskLevel:   risk,
		LockPeriod:  lock,
		MinDeposit:  decimal.NewFromInt(minDeposit),
		Category:    category,
		IsFeatured:  featured,
		IsHot:       hot,
		TVL:         decimal.NewFromInt(tvl),
	}
}

// Demo returns the IDRX pair dataset shown on the dashboard.
func Demo() Dataset {
	return Dataset{
		Protocols: []models.Protocol{
			protocol("aave", "Aave V3", "Leading decentralized lending protocol", "Lending", 5.8, 5_000_000),
			protocol("moonwell", "Moonwell", "Open lending and borrowing protocol", "Lending", 6.5, 8_000_000),
			protocol("aerodrome", "Aerodrome", "Next-generation AMM on Base", "DEX", 8.5, 12_000_000),
			protocol("seamless", "Seamless Protocol", "Integrated DeFi protocol for Base", "Yield Optimizer", 6.0, 7_500_000),
		},
		Strategies: []models.Strategy{
			strategy("kaito-idrx", "KAITO/IDRX", "High-growth AI token paired with IDRX", 15.2, models.RiskHigher, 30, 500, "Growth", false, true, 2_500_000),
			strategy("morph-idrx", "MORPH/IDRX", "Layer 2 infrastructure token paired with IDRX", 11.5, models.RiskMedium, 7, 200, "Balanced", false, true, 1_800_000),
			strategy("eth-idrx", "ETH/IDRX", "Ethereum paired with IDRX for stable returns", 8.3, models.RiskLow, 0, 100, "Conservative", true, false, 5_000_000),
			strategy("usdc-idrx", "USDC/IDRX", "Stablecoin paired with IDRX for maximum stability", 6.8, models.RiskLow, 0, 50, "Stable", true, false, 8_500_000),
			strategy("base-idrx", "BASE/IDRX", "Base ecosystem token paired with IDRX", 18.5, models.RiskHigher, 30, 500, "Aggressive", true, true, 3_200_000),
			strategy("link-idrx", "LINK/IDRX", "Chainlink oracle token paired with IDRX", 12.1, models.RiskMedium, 7, 200, "Balanced", false, false, 2_100_000),
			strategy("arb-idrx", "ARB/IDRX", "Arbitrum token paired with IDRX", 16.7, models.RiskHigher, 30, 500, "Growth", false, false, 2_800_000),
			strategy("op-idrx", "OP/IDRX", "Optimism token paired with IDRX", 10.9, models.RiskMedium, 7, 200, "Balanced", false, false, 1_900_000),
		},
		Allocations: []Allocation{
			{"kaito-idrx", "aerodrome", 50},
			{"kaito-idrx", "moonwell", 30},
			{"kaito-idrx", "seamless", 20},

			{"morph-idrx", "moonwell", 40},
			{"morph-idrx", "aerodrome", 35},
			{"morph-idrx", "aave", 25},

			{"eth-idrx", "aave", 60},
			{"eth-idrx", "moonwell", 40},

			{"usdc-idrx", "aave", 70},
			{"usdc-idrx", "moonwell", 30},

			{"base-idrx", "aerodrome", 55},
			{"base-idrx", "seamless", 25},
			{"base-idrx", "moonwell", 20},

			{"link-idrx", "moonwell", 45},
			{"link-idrx", "aave", 35},
			{"link-idrx", "aerodrome", 20},

			{"arb-idrx", "aerodrome", 50},
			{"arb-idrx", "seamless", 30},
			{"arb-idrx", "moonwell", 20},

			{"op-idrx", "moonwell", 40},
			{"op-idrx", "aave", 35},
			{"op-idrx", "aerodrome", 25},
		},
	}
}
