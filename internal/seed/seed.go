// Package seed loads demo protocols, strategies and allocations.
package seed

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"stacksave/internal/models"
	"stacksave/internal/repository"
)

const allocationTolerance = 1e-9

// Options controls how a dataset is loaded.
type Options struct {
	// Strict rejects the dataset when a strategy's allocations do not add up
	// to 100, or when a strategy has an unknown risk level.
	Strict bool
}

// Summary counts the rows a Run touched.
type Summary struct {
	Protocols   int
	Strategies  int
	Allocations int
}

// Validate checks the dataset's references and allocation totals.
func (d Dataset) Validate() error {
	protocols := make(map[string]bool, len(d.Protocols))
	for _, p := range d.Protocols {
		protocols[p.Name] = true
	}

	totals := make(map[string]float64, len(d.Strategies))
	for _, s := range d.Strategies {
		if !s.RiskLevel.Valid() {
			return fmt.Errorf("strategy %s: unknown risk level %q", s.Name, s.RiskLevel)
		}
		totals[s.Name] = 0
	}

	for _, a := range d.Allocations {
		if !protocols[a.Protocol] {
			return fmt.Errorf("allocation %s/%s: unknown protocol", a.Strategy, a.Protocol)
		}
		if _, ok := totals[a.Strategy]; !ok {
			return fmt.Errorf("allocation %s/%s: unknown strategy", a.Strategy, a.Protocol)
		}
		if a.Allocation < 0 || a.Allocation > 100 {
			return fmt.Errorf("allocation %s/%s: %v outside 0-100", a.Strategy, a.Protocol, a.Allocation)
		}
		totals[a.Strategy] += a.Allocation
	}

	for name, total := range totals {
		if math.Abs(total-100) > allocationTolerance {
			return fmt.Errorf("strategy %s: allocations total %v, want 100", name, total)
		}
	}
	return nil
}

// Run upserts the dataset. Existing rows are left as they are, so running it
// twice is harmless.
func Run(ctx context.Context, seeder repository.Seeder, data Dataset, opts Options) (*Summary, error) {
	if opts.Strict {
		if err := data.Validate(); err != nil {
			return nil, fmt.Errorf("invalid dataset: %w", err)
		}
	}

	summary := &Summary{}

	protocolIDs := make(map[string]uint, len(data.Protocols))
	for _, p := range data.Protocols {
		if err := seeder.UpsertProtocol(ctx, &p); err != nil {
			return nil, err
		}
		protocolIDs[p.Name] = p.ID
		summary.Protocols++
	}
	logrus.Infof("Protocols seeded: %d", summary.Protocols)

	strategyIDs := make(map[string]uint, len(data.Strategies))
	for _, s := range data.Strategies {
		if err := seeder.UpsertStrategy(ctx, &s); err != nil {
			return nil, err
		}
		strategyIDs[s.Name] = s.ID
		summary.Strategies++
	}
	logrus.Infof("Strategies seeded: %d", summary.Strategies)

	for _, a := range data.Allocations {
		strategyID, ok := strategyIDs[a.Strategy]
		if !ok {
			return nil, fmt.Errorf("allocation references unknown strategy %s", a.Strategy)
		}
		protocolID, ok := protocolIDs[a.Protocol]
		if !ok {
			return nil, fmt.Errorf("allocation references unknown protocol %s", a.Protocol)
		}

		sp := &models.StrategyProtocol{
			StrategyID: strategyID,
			ProtocolID: protocolID,
			Allocation: a.Allocation,
		}
		if err := seeder.UpsertAllocation(ctx, sp); err != nil {
			return nil, err
		}
		summary.Allocations++
	}
	logrus.Infof("Strategy allocations seeded: %d", summary.Allocations)

	return summary, nil
}
