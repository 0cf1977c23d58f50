// Package repository defines the store used by the services and its gorm
// implementation. An in-memory implementation lives in the memory subpackage.
package repository

import (
	"context"
	"errors"
	"time"

	"stacksave/internal/models"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("record not found")

type ProtocolRepository interface {
	// ListActive returns active protocols ordered by name ascending.
	ListActive(ctx context.Context) ([]models.Protocol, error)
	FindByName(ctx context.Context, name string) (*models.Protocol, error)
	// TopByAPY returns at most limit active protocols, highest APY first.
	TopByAPY(ctx context.Context, limit int) ([]models.Protocol, error)
	// ListActiveByCategory filters on category when non-empty, ordered by APY descending.
	ListActiveByCategory(ctx context.Context, category string) ([]models.Protocol, error)
	// ActiveCategories returns each category of an active protocol once, ascending.
	ActiveCategories(ctx context.Context) ([]string, error)
}

// StrategyRepository returns strategies with Protocols and Protocols[i].Protocol loaded.
type StrategyRepository interface {
	ListWithAllocations(ctx context.Context) ([]models.Strategy, error)
	FindByName(ctx context.Context, name string) (*models.Strategy, error)
	// ListHot returns hot or featured strategies by current APY descending.
	ListHot(ctx context.Context, limit int) ([]models.Strategy, error)
}

type FaucetRepository interface {
	// WithinWalletLock runs fn with exclusive access to the wallet's history.
	// Writes made through the repository passed to fn commit only if fn returns nil.
	WithinWalletLock(ctx context.Context, wallet string, fn func(FaucetRepository) error) error
	// LatestAfter returns the newest request for wallet with timestamp strictly
	// after since, or ErrNotFound.
	LatestAfter(ctx context.Context, wallet string, since time.Time) (*models.FaucetRequest, error)
	Create(ctx context.Context, req *models.FaucetRequest) error
	// History returns up to limit requests for wallet, newest first.
	History(ctx context.Context, wallet string, limit int) ([]models.FaucetRequest, error)
}

type SnapshotRepository interface {
	// Record inserts snapshots, skipping any (protocol, day) already present.
	// It returns the number of rows inserted.
	Record(ctx context.Context, snapshots []models.ProtocolAPYSnapshot) (int, error)
	// ListSince returns snapshots of a protocol recorded at or after since, oldest first.
	ListSince(ctx context.Context, protocolID uint, since time.Time) ([]models.ProtocolAPYSnapshot, error)
}

// Seeder upserts demo data. Each call leaves existing rows untouched and
// fills the argument with the stored record.
type Seeder interface {
	UpsertProtocol(ctx context.Context, p *models.Protocol) error
	UpsertStrategy(ctx context.Context, s *models.Strategy) error
	UpsertAllocation(ctx context.Context, sp *models.StrategyProtocol) error
}

// Repositories bundles one implementation of every repository.
type Repositories struct {
	Protocols  ProtocolRepository
	Strategies StrategyRepository
	Faucet     FaucetRepository
	Snapshots  SnapshotRepository
	Seeder     Seeder
}
