package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stacksave/internal/models"
)

// NewGorm returns repositories backed by db.
func NewGorm(db *gorm.DB) *Repositories {
	return &Repositories{
		Protocols:  &gormProtocols{db: db},
		Strategies: &gormStrategies{db: db},
		Faucet:     &gormFaucet{db: db},
		Snapshots:  &gormSnapshots{db: db},
		Seeder:     &gormSeeder{db: db},
	}
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return errors.Wrap(err, msg)
}

type gormProtocols struct {
	db *gorm.DB
}

func (r *gormProtocols) ListActive(ctx context.Context) ([]models.Protocol, error) {
	var protocols []models.Protocol
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name asc").
		Find(&protocols).Error; err != nil {
		return nil, errors.Wrap(err, "list active protocols")
	}
	return protocols, nil
}

func (r *gormProtocols) FindByName(ctx context.Context, name string) (*models.Protocol, error) {
	var protocol models.Protocol
	if err := r.db.WithContext(ctx).Where("name = ?", name).Take(&protocol).Error; err != nil {
		return nil, notFoundOr(err, "find protocol "+name)
	}
	return &protocol, nil
}

func (r *gormProtocols) TopByAPY(ctx context.Context, limit int) ([]models.Protocol, error) {
	var protocols []models.Protocol
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("apy desc").Order("id asc").
		Limit(limit).
		Find(&protocols).Error; err != nil {
		return nil, errors.Wrap(err, "top protocols")
	}
	return protocols, nil
}

func (r *gormProtocols) ListActiveByCategory(ctx context.Context, category string) ([]models.Protocol, error) {
	query := r.db.WithContext(ctx).Where("is_active = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var protocols []models.Protocol
	if err := query.Order("apy desc").Order("id asc").Find(&protocols).Error; err != nil {
		return nil, errors.Wrap(err, "list protocols by category")
	}
	return protocols, nil
}

func (r *gormProtocols) ActiveCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := r.db.WithContext(ctx).
		Model(&models.Protocol{}).
		Where("is_active = ?", true).
		Distinct().
		Order("category asc").
		Pluck("category", &categories).Error; err != nil {
		return nil, errors.Wrap(err, "list protocol categories")
	}
	return categories, nil
}

type gormStrategies struct {
	db *gorm.DB
}

// withAllocations preloads allocation rows in insertion order with their protocol.
func (r *gormStrategies) withAllocations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Protocols", func(db *gorm.DB) *gorm.DB {
			return db.Order("strategy_protocols.id asc")
		}).
		Preload("Protocols.Protocol")
}

func (r *gormStrategies) ListWithAllocations(ctx context.Context) ([]models.Strategy, error) {
	var strategies []models.Strategy
	if err := r.withAllocations(ctx).Order("name asc").Find(&strategies).Error; err != nil {
		return nil, errors.Wrap(err, "list strategies")
	}
	return strategies, nil
}

func (r *gormStrategies) FindByName(ctx context.Context, name string) (*models.Strategy, error) {
	var strategy models.Strategy
	if err := r.withAllocations(ctx).Where("name = ?", name).Take(&strategy).Error; err != nil {
		return nil, notFoundOr(err, "find strategy "+name)
	}
	return &strategy, nil
}

func (r *gormStrategies) ListHot(ctx context.Context, limit int) ([]models.Strategy, error) {
	var strategies []models.Strategy
	if err := r.withAllocations(ctx).
		Where("is_hot = ? OR is_featured = ?", true, true).
		Order("apy_current desc").Order("id asc").
		Limit(limit).
		Find(&strategies).Error; err != nil {
		return nil, errors.Wrap(err, "list hot strategies")
	}
	return strategies, nil
}

type gormFaucet struct {
	db *gorm.DB
}

// WithinWalletLock serializes callers on a transaction-scoped advisory lock
// keyed by the wallet address.
func (r *gormFaucet) WithinWalletLock(ctx context.Context, wallet string, fn func(FaucetRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", wallet).Error; err != nil {
			return errors.Wrap(err, "lock wallet "+wallet)
		}
		return fn(&gormFaucet{db: tx})
	})
}

func (r *gormFaucet) LatestAfter(ctx context.Context, wallet string, since time.Time) (*models.FaucetRequest, error) {
	var req models.FaucetRequest
	if err := r.db.WithContext(ctx).
		Where("wallet_address = ? AND timestamp > ?", wallet, since).
		Order("timestamp desc").
		Take(&req).Error; err != nil {
		return nil, notFoundOr(err, "latest faucet request")
	}
	return &req, nil
}

func (r *gormFaucet) Create(ctx context.Context, req *models.FaucetRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return errors.Wrap(err, "create faucet request")
	}
	return nil
}

func (r *gormFaucet) History(ctx context.Context, wallet string, limit int) ([]models.FaucetRequest, error) {
	var history []models.FaucetRequest
	if err := r.db.WithContext(ctx).
		Where("wallet_address = ?", wallet).
		Order("timestamp desc").
		Limit(limit).
		Find(&history).Error; err != nil {
		return nil, errors.Wrap(err, "faucet history")
	}
	return history, nil
}

type gormSnapshots struct {
	db *gorm.DB
}

func (r *gormSnapshots) Record(ctx context.Context, snapshots []models.ProtocolAPYSnapshot) (int, error) {
	if len(snapshots) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&snapshots)
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "record apy snapshots")
	}
	return int(result.RowsAffected), nil
}

func (r *gormSnapshots) ListSince(ctx context.Context, protocolID uint, since time.Time) ([]models.ProtocolAPYSnapshot, error) {
	var snapshots []models.ProtocolAPYSnapshot
	if err := r.db.WithContext(ctx).
		Where("protocol_id = ? AND recorded_at >= ?", protocolID, since).
		Order("recorded_at asc").
		Find(&snapshots).Error; err != nil {
		return nil, errors.Wrap(err, "list apy snapshots")
	}
	return snapshots, nil
}

type gormSeeder struct {
	db *gorm.DB
}

func (r *gormSeeder) UpsertProtocol(ctx context.Context, p *models.Protocol) error {
	if err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Where("name = ?", p.Name).
		FirstOrCreate(p).Error; err != nil {
		return errors.Wrap(err, "upsert protocol "+p.Name)
	}
	return nil
}

func (r *gormSeeder) UpsertStrategy(ctx context.Context, s *models.Strategy) error {
	if err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Where("name = ?", s.Name).
		FirstOrCreate(s).Error; err != nil {
		return errors.Wrap(err, "upsert strategy "+s.Name)
	}
	return nil
}

func (r *gormSeeder) UpsertAllocation(ctx context.Context, sp *models.StrategyProtocol) error {
	if err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Where("strategy_id = ? AND protocol_id = ?", sp.StrategyID, sp.ProtocolID).
		FirstOrCreate(sp).Error; err != nil {
		return errors.Wrap(err, "upsert strategy allocation")
	}
	return nil
}
