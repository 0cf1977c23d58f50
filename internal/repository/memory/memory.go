// Package memory is an in-process implementation of the repositories. It is
// used by tests and by the API's demo mode.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"stacksave/internal/models"
	"stacksave/internal/repository"
)

// Store holds every table in memory. Rows are kept in insertion order so
// ties in sorted queries resolve the same way on every call.
type Store struct {
	mu          sync.RWMutex
	nextID      uint
	protocols   []models.Protocol
	strategies  []models.Strategy
	allocations []models.StrategyProtocol
	faucet      []models.FaucetRequest
	snapshots   []models.ProtocolAPYSnapshot

	locksMu     sync.Mutex
	walletLocks map[string]*sync.Mutex
}

func New() *Store {
	return &Store{walletLocks: make(map[string]*sync.Mutex)}
}

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		Protocols:  protocolRepo{s},
		Strategies: strategyRepo{s},
		Faucet:     &faucetRepo{store: s},
		Snapshots:  snapshotRepo{s},
		Seeder:     seeder{s},
	}
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

func limitOf[T any](rows []T, limit int) []T {
	if limit >= 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}

type protocolRepo struct{ s *Store }

func (r protocolRepo) active() []models.Protocol {
	var out []models.Protocol
	for _, p := range r.s.protocols {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out
}

func byAPYDesc(rows []models.Protocol) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].APY > rows[j].APY })
}

func (r protocolRepo) ListActive(_ context.Context) ([]models.Protocol, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := r.active()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r protocolRepo) FindByName(_ context.Context, name string) (*models.Protocol, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.protocols {
		if p.Name == name {
			found := p
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r protocolRepo) TopByAPY(_ context.Context, limit int) ([]models.Protocol, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := r.active()
	byAPYDesc(out)
	return limitOf(out, limit), nil
}

func (r protocolRepo) ListActiveByCategory(_ context.Context, category string) ([]models.Protocol, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Protocol
	for _, p := range r.active() {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	byAPYDesc(out)
	return out, nil
}

func (r protocolRepo) ActiveCategories(_ context.Context) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, p := range r.active() {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

type strategyRepo struct{ s *Store }

// load returns a copy of st with its allocations and their protocols attached.
func (r strategyRepo) load(st models.Strategy) models.Strategy {
	st.Protocols = []models.StrategyProtocol{}
	for _, sp := range r.s.allocations {
		if sp.StrategyID != st.ID {
			continue
		}
		for _, p := range r.s.protocols {
			if p.ID == sp.ProtocolID {
				sp.Protocol = p
				break
			}
		}
		st.Protocols = append(st.Protocols, sp)
	}
	return st
}

func (r strategyRepo) ListWithAllocations(_ context.Context) ([]models.Strategy, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.Strategy, 0, len(r.s.strategies))
	for _, st := range r.s.strategies {
		out = append(out, r.load(st))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r strategyRepo) FindByName(_ context.Context, name string) (*models.Strategy, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, st := range r.s.strategies {
		if st.Name == name {
			found := r.load(st)
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r strategyRepo) ListHot(_ context.Context, limit int) ([]models.Strategy, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Strategy
	for _, st := range r.s.strategies {
		if st.IsHot || st.IsFeatured {
			out = append(out, r.load(st))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].APYCurrent > out[j].APYCurrent })
	return limitOf(out, limit), nil
}

// faucetRepo reads committed rows plus the rows staged by the enclosing
// WithinWalletLock call, if any.
type faucetRepo struct {
	store  *Store
	staged *[]models.FaucetRequest
}

func (r *faucetRepo) walletLock(wallet string) *sync.Mutex {
	r.store.locksMu.Lock()
	defer r.store.locksMu.Unlock()

	l, ok := r.store.walletLocks[wallet]
	if !ok {
		l = &sync.Mutex{}
		r.store.walletLocks[wallet] = l
	}
	return l
}

func (r *faucetRepo) WithinWalletLock(_ context.Context, wallet string, fn func(repository.FaucetRepository) error) error {
	l := r.walletLock(wallet)
	l.Lock()
	defer l.Unlock()

	var staged []models.FaucetRequest
	if err := fn(&faucetRepo{store: r.store, staged: &staged}); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.faucet = append(r.store.faucet, staged...)
	return nil
}

func (r *faucetRepo) rows() []models.FaucetRequest {
	rows := append([]models.FaucetRequest(nil), r.store.faucet...)
	if r.staged != nil {
		rows = append(rows, *r.staged...)
	}
	return rows
}

func (r *faucetRepo) LatestAfter(_ context.Context, wallet string, since time.Time) (*models.FaucetRequest, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var latest *models.FaucetRequest
	for _, req := range r.rows() {
		if req.WalletAddress != wallet || !req.Timestamp.After(since) {
			continue
		}
		if latest == nil || req.Timestamp.After(latest.Timestamp) {
			found := req
			latest = &found
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	return latest, nil
}

func (r *faucetRepo) Create(_ context.Context, req *models.FaucetRequest) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	req.ID = r.store.id()
	if r.staged != nil {
		*r.staged = append(*r.staged, *req)
		return nil
	}
	r.store.faucet = append(r.store.faucet, *req)
	return nil
}

func (r *faucetRepo) History(_ context.Context, wallet string, limit int) ([]models.FaucetRequest, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []models.FaucetRequest
	for _, req := range r.rows() {
		if req.WalletAddress == wallet {
			out = append(out, req)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return limitOf(out, limit), nil
}

type snapshotRepo struct{ s *Store }

func (r snapshotRepo) Record(_ context.Context, snapshots []models.ProtocolAPYSnapshot) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	inserted := 0
	for _, snap := range snapshots {
		exists := false
		for _, have := range r.s.snapshots {
			if have.ProtocolID == snap.ProtocolID && have.RecordedAt.Equal(snap.RecordedAt) {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		snap.ID = r.s.id()
		r.s.snapshots = append(r.s.snapshots, snap)
		inserted++
	}
	return inserted, nil
}

func (r snapshotRepo) ListSince(_ context.Context, protocolID uint, since time.Time) ([]models.ProtocolAPYSnapshot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []models.ProtocolAPYSnapshot{}
	for _, snap := range r.s.snapshots {
		if snap.ProtocolID == protocolID && !snap.RecordedAt.Before(since) {
			out = append(out, snap)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordedAt.Before(out[j].RecordedAt) })
	return out, nil
}

type seeder struct{ s *Store }

func (r seeder) UpsertProtocol(_ context.Context, p *models.Protocol) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, have := range r.s.protocols {
		if have.Name == p.Name {
			*p = have
			return nil
		}
	}
	now := time.Now()
	p.ID = r.s.id()
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.protocols = append(r.s.protocols, *p)
	return nil
}

func (r seeder) UpsertStrategy(_ context.Context, st *models.Strategy) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, have := range r.s.strategies {
		if have.Name == st.Name {
			*st = have
			return nil
		}
	}
	now := time.Now()
	st.ID = r.s.id()
	st.CreatedAt, st.UpdatedAt = now, now
	stored := *st
	stored.Protocols = nil
	r.s.strategies = append(r.s.strategies, stored)
	return nil
}

func (r seeder) UpsertAllocation(_ context.Context, sp *models.StrategyProtocol) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, have := range r.s.allocations {
		if have.StrategyID == sp.StrategyID && have.ProtocolID == sp.ProtocolID {
			*sp = have
			return nil
		}
	}
	sp.ID = r.s.id()
	stored := *sp
	stored.Protocol = models.Protocol{}
	r.s.allocations = append(r.s.allocations, stored)
	return nil
}

// SetProtocolActive flips a protocol's active flag. Demo data has no write
// path for this, so tests use it to cover inactive rows.
func (s *Store) SetProtocolActive(name string, active bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.protocols {
		if s.protocols[i].Name == name {
			s.protocols[i].IsActive = active
			return true
		}
	}
	return false
}
