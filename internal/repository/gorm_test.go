package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stacksave/internal/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

var protocolColumns = []string{"id", "name", "display_name", "description", "category", "apy", "tvl", "is_active", "created_at", "updated_at"}

func TestGormProtocols(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("List Active", func(t *testing.T) {
		db, mock := newMockDB(t)
		repos := NewGorm(db)

		mock.ExpectQuery(`SELECT \* FROM "protocols" WHERE is_active = \$1 ORDER BY name asc`).
			WithArgs(true).
			WillReturnRows(sqlmock.NewRows(protocolColumns).
				AddRow(1, "aave", "Aave V3", "", "Lending", 5.8, "5000000.00", true, now, now).
				AddRow(2, "moonwell", "Moonwell", "", "Lending", 6.5, "8000000.00", true, now, now))

		protocols, err := repos.Protocols.ListActive(ctx)
		require.NoError(t, err)
		require.Len(t, protocols, 2)
		assert.Equal(t, "aave", protocols[0].Name)
		assert.True(t, decimal.NewFromInt(5_000_000).Equal(protocols[0].TVL))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Find Missing Protocol", func(t *testing.T) {
		db, mock := newMockDB(t)
		repos := NewGorm(db)

		mock.ExpectQuery(`SELECT \* FROM "protocols" WHERE name = \$1`).
			WillReturnRows(sqlmock.NewRows(protocolColumns))

		_, err := repos.Protocols.FindByName(ctx, "compound")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Top By APY", func(t *testing.T) {
		db, mock := newMockDB(t)
		repos := NewGorm(db)

		mock.ExpectQuery(`SELECT \* FROM "protocols" WHERE is_active = \$1 ORDER BY apy desc,id asc LIMIT`).
			WillReturnRows(sqlmock.NewRows(protocolColumns).
				AddRow(3, "aerodrome", "Aerodrome", "", "DEX", 8.5, "12000000", true, now, now))

		top, err := repos.Protocols.TopByAPY(ctx, 1)
		require.NoError(t, err)
		require.Len(t, top, 1)
		assert.Equal(t, 8.5, top[0].APY)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Active Categories", func(t *testing.T) {
		db, mock := newMockDB(t)
		repos := NewGorm(db)

		mock.ExpectQuery(`SELECT DISTINCT "category" FROM "protocols" WHERE is_active = \$1 ORDER BY category asc`).
			WithArgs(true).
			WillReturnRows(sqlmock.NewRows([]string{"category"}).AddRow("DEX").AddRow("Lending"))

		categories, err := repos.Protocols.ActiveCategories(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"DEX", "Lending"}, categories)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Errors Are Wrapped", func(t *testing.T) {
		db, mock := newMockDB(t)
		repos := NewGorm(db)

		boom := errors.New("connection refused")
		mock.ExpectQuery(`SELECT \* FROM "protocols"`).WillReturnError(boom)

		_, err := repos.Protocols.ListActive(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "list active protocols")
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}

func TestGormFaucet(t *testing.T) {
	ctx := context.Background()
	wallet := "0x1234567890abcdef1234567890abcdef12345678"

	t.Run("Grant Inside Wallet Lock", func(t *testing.T) {
		db, mock := newMockDB(t)
		repos := NewGorm(db)

		mock.ExpectBegin()
		mock.ExpectExec(`SELECT pg_advisory_xact_lock\(hashtext\(\$1\)\)`).
			WithArgs(wallet).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT \* FROM "faucet_requests" WHERE wallet_address = \$1 AND timestamp > \$2 ORDER BY timestamp desc`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "wallet_address", "amount", "tx_hash", "timestamp"}))
		mock.ExpectQuery(`INSERT INTO "faucet_requests"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
		mock.ExpectCommit()

		req := &models.FaucetRequest{WalletAddress: wallet, Amount: 10000, TxHash: "0xabc", Timestamp: time.Now()}
		err := repos.Faucet.WithinWalletLock(ctx, wallet, func(tx FaucetRepository) error {
			_, err := tx.LatestAfter(ctx, wallet, time.Now().Add(-24*time.Hour))
			require.ErrorIs(t, err, ErrNotFound)
			return tx.Create(ctx, req)
		})
		require.NoError(t, err)
		assert.Equal(t, uint(7), req.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure Rolls Back", func(t *testing.T) {
		db, mock := newMockDB(t)
		repos := NewGorm(db)

		mock.ExpectBegin()
		mock.ExpectExec(`SELECT pg_advisory_xact_lock`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		boom := errors.New("boom")
		err := repos.Faucet.WithinWalletLock(ctx, wallet, func(FaucetRepository) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("History Newest First", func(t *testing.T) {
		db, mock := newMockDB(t)
		repos := NewGorm(db)

		later := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
		earlier := later.Add(-48 * time.Hour)
		mock.ExpectQuery(`SELECT \* FROM "faucet_requests" WHERE wallet_address = \$1 ORDER BY timestamp desc LIMIT`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "wallet_address", "amount", "tx_hash", "timestamp"}).
				AddRow(2, wallet, 10000, "0x02", later).
				AddRow(1, wallet, 10000, "0x01", earlier))

		history, err := repos.Faucet.History(ctx, wallet, 10)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, "0x02", history[0].TxHash)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSnapshots(t *testing.T) {
	ctx := context.Background()

	t.Run("Record Skips Existing Days", func(t *testing.T) {
		db, mock := newMockDB(t)
		repos := NewGorm(db)

		day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "protocol_apy_snapshots" .* ON CONFLICT DO NOTHING`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
		mock.ExpectCommit()

		n, err := repos.Snapshots.Record(ctx, []models.ProtocolAPYSnapshot{
			{ProtocolID: 1, APY: 5.8, TVL: decimal.NewFromInt(1), RecordedAt: day},
			{ProtocolID: 2, APY: 6.5, TVL: decimal.NewFromInt(2), RecordedAt: day},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Record Nothing", func(t *testing.T) {
		db, mock := newMockDB(t)
		repos := NewGorm(db)

		n, err := repos.Snapshots.Record(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
