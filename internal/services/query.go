package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"

	"stacksave/internal/metrics"
	"stacksave/internal/models"
	"stacksave/internal/repository"
)

const (
	DefaultTopLimit    = 4
	DefaultHotLimit    = 6
	DefaultHistoryDays = 7
	MaxHistoryDays     = 365
)

// QueryService answers the read-only protocol and strategy endpoints.
type QueryService struct {
	protocols  repository.ProtocolRepository
	strategies repository.StrategyRepository
	snapshots  repository.SnapshotRepository

	cache    *ristretto.Cache
	cacheTTL time.Duration
	now      func() time.Time
}

type QueryOption func(*QueryService)

// WithCache caches protocol list results for ttl.
func WithCache(cache *ristretto.Cache, ttl time.Duration) QueryOption {
	return func(s *QueryService) {
		if cache != nil && ttl > 0 {
			s.cache = cache
			s.cacheTTL = ttl
		}
	}
}

func WithQueryClock(now func() time.Time) QueryOption {
	return func(s *QueryService) { s.now = now }
}

func NewQueryService(repos *repository.Repositories, opts ...QueryOption) *QueryService {
	s := &QueryService{
		protocols:  repos.Protocols,
		strategies: repos.Strategies,
		snapshots:  repos.Snapshots,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewQueryCache builds the cache handed to WithCache.
func NewQueryCache() (*ristretto.Cache, error) {
	return ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     1_000,
		BufferItems: 64,
	})
}

func cached[T any](s *QueryService, key string, load func() (T, error)) (T, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			if hit, ok := v.(T); ok {
				return hit, nil
			}
		}
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	if s.cache != nil {
		s.cache.SetWithTTL(key, v, 1, s.cacheTTL)
	}
	return v, nil
}

func (s *QueryService) ListProtocols(ctx context.Context) ([]models.Protocol, error) {
	return cached(s, "protocols:active", func() ([]models.Protocol, error) {
		return s.protocols.ListActive(ctx)
	})
}

func (s *QueryService) GetProtocol(ctx context.Context, name string) (*models.Protocol, error) {
	return s.protocols.FindByName(ctx, name)
}

// TopProtocols returns the limit highest-APY active protocols. A non-positive
// limit falls back to DefaultTopLimit.
func (s *QueryService) TopProtocols(ctx context.Context, limit int) ([]models.Protocol, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	return cached(s, fmt.Sprintf("protocols:top:%d", limit), func() ([]models.Protocol, error) {
		return s.protocols.TopByAPY(ctx, limit)
	})
}

// ProtocolsByCategory returns all active protocols when category is empty.
func (s *QueryService) ProtocolsByCategory(ctx context.Context, category string) ([]models.Protocol, error) {
	return cached(s, "protocols:category:"+category, func() ([]models.Protocol, error) {
		return s.protocols.ListActiveByCategory(ctx, category)
	})
}

func (s *QueryService) ProtocolCategories(ctx context.Context) ([]string, error) {
	return cached(s, "protocols:categories", func() ([]string, error) {
		return s.protocols.ActiveCategories(ctx)
	})
}

func (s *QueryService) ListStrategies(ctx context.Context) ([]models.Strategy, error) {
	return s.strategies.ListWithAllocations(ctx)
}

func (s *QueryService) GetStrategy(ctx context.Context, name string) (*models.Strategy, error) {
	return s.strategies.FindByName(ctx, name)
}

// HotVaults returns hot or featured strategies. A non-positive limit falls
// back to DefaultHotLimit.
func (s *QueryService) HotVaults(ctx context.Context, limit int) ([]models.Strategy, error) {
	if limit <= 0 {
		limit = DefaultHotLimit
	}
	return s.strategies.ListHot(ctx, limit)
}

// StrategyBreakdown weighs each linked protocol's APY by its allocation.
func (s *QueryService) StrategyBreakdown(ctx context.Context, name string) (*StrategyBreakdown, error) {
	strategy, err := s.strategies.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}

	breakdown := &StrategyBreakdown{
		Name:        strategy.Name,
		DisplayName: strategy.DisplayName,
		CurrentAPY:  strategy.APYCurrent,
		Protocols:   make([]ProtocolContribution, 0, len(strategy.Protocols)),
	}
	for _, sp := range strategy.Protocols {
		breakdown.Protocols = append(breakdown.Protocols, ProtocolContribution{
			Name:         sp.Protocol.Name,
			DisplayName:  sp.Protocol.DisplayName,
			APY:          sp.Protocol.APY,
			Allocation:   sp.Allocation,
			Contribution: (sp.Protocol.APY * sp.Allocation) / 100,
		})
	}
	return breakdown, nil
}

// ProtocolHistory returns the daily snapshots of the last days days,
// including today. days is clamped to [1, MaxHistoryDays]; non-positive
// values fall back to DefaultHistoryDays.
func (s *QueryService) ProtocolHistory(ctx context.Context, name string, days int) (*ProtocolHistory, error) {
	switch {
	case days <= 0:
		days = DefaultHistoryDays
	case days > MaxHistoryDays:
		days = MaxHistoryDays
	}

	protocol, err := s.protocols.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}

	since := snapshotDay(s.now()).AddDate(0, 0, -(days - 1))
	snapshots, err := s.snapshots.ListSince(ctx, protocol.ID, since)
	if err != nil {
		return nil, err
	}

	history := &ProtocolHistory{
		Protocol: protocol.Name,
		Days:     days,
		Points:   make([]HistoryPoint, 0, len(snapshots)),
	}
	for _, snap := range snapshots {
		history.Points = append(history.Points, HistoryPoint{
			Date: snap.RecordedAt.UTC().Format(time.DateOnly),
			APY:  snap.APY,
			TVL:  snap.TVL,
		})
	}
	return history, nil
}

// SnapshotProtocolAPY records today's APY and TVL of every active protocol.
// Protocols already recorded today are skipped.
func (s *QueryService) SnapshotProtocolAPY(ctx context.Context) (int, error) {
	protocols, err := s.protocols.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("load protocols: %w", err)
	}

	day := snapshotDay(s.now())
	snapshots := make([]models.ProtocolAPYSnapshot, 0, len(protocols))
	for _, p := range protocols {
		snapshots = append(snapshots, models.ProtocolAPYSnapshot{
			ProtocolID: p.ID,
			APY:        p.APY,
			TVL:        p.TVL,
			RecordedAt: day,
		})
	}

	n, err := s.snapshots.Record(ctx, snapshots)
	if err != nil {
		return 0, fmt.Errorf("record snapshots: %w", err)
	}
	metrics.RecordSnapshots(n)
	return n, nil
}

func snapshotDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsNotFound reports whether err means a missing protocol or strategy.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
