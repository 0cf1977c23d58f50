package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stacksave/internal/models"
	"stacksave/internal/repository"
	"stacksave/internal/repository/memory"
)

const testWallet = "0x1234567890abcdef1234567890abcdef12345678"

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingNotifier struct {
	mu     sync.Mutex
	grants []models.FaucetRequest
	err    error
}

func (n *recordingNotifier) NotifyGrant(_ context.Context, grant models.FaucetRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.grants = append(n.grants, grant)
	return n.err
}

func newTestFaucet(opts ...FaucetOption) (*FaucetService, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	opts = append([]FaucetOption{WithFaucetClock(clock.Now)}, opts...)
	return NewFaucetService(memory.New().Repositories().Faucet, opts...), clock
}

func TestFaucetService(t *testing.T) {
	ctx := context.Background()

	t.Run("First Request Is Granted", func(t *testing.T) {
		svc, clock := newTestFaucet()

		result, err := svc.RequestTokens(ctx, testWallet)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, FaucetAmount, result.Amount)
		assert.Regexp(t, `^0x[0-9a-f]{64}$`, result.TxHash)
		assert.Empty(t, result.Error)
		assert.True(t, clock.Now().Add(24*time.Hour).Equal(result.CooldownUntil))
	})

	t.Run("Second Request Within Cooldown Is Refused", func(t *testing.T) {
		svc, clock := newTestFaucet()

		first, err := svc.RequestTokens(ctx, testWallet)
		require.NoError(t, err)
		require.True(t, first.Success)

		clock.Advance(30 * time.Minute)
		second, err := svc.RequestTokens(ctx, testWallet)
		require.NoError(t, err)
		assert.False(t, second.Success)
		assert.Zero(t, second.Amount)
		assert.Empty(t, second.TxHash)
		assert.Equal(t, "You can request again in 24 hours", second.Error)
		assert.Equal(t, 24, second.HoursRemaining)
		assert.True(t, first.CooldownUntil.Equal(second.CooldownUntil), "cooldownUntil should not move")

		history, err := svc.GetHistory(ctx, testWallet)
		require.NoError(t, err)
		assert.Len(t, history, 1, "refused request must not be recorded")
	})

	t.Run("Hours Remaining Rounds Up", func(t *testing.T) {
		svc, clock := newTestFaucet()

		_, err := svc.RequestTokens(ctx, testWallet)
		require.NoError(t, err)

		clock.Advance(22*time.Hour + 30*time.Minute)
		result, err := svc.RequestTokens(ctx, testWallet)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, 2, result.HoursRemaining)

		clock.Advance(time.Hour + 29*time.Minute)
		result, err = svc.RequestTokens(ctx, testWallet)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, "You can request again in 1 hour", result.Error)
	})

	t.Run("Request At Exactly 24 Hours Is Granted", func(t *testing.T) {
		svc, clock := newTestFaucet()

		_, err := svc.RequestTokens(ctx, testWallet)
		require.NoError(t, err)

		clock.Advance(FaucetCooldown)
		result, err := svc.RequestTokens(ctx, testWallet)
		require.NoError(t, err)
		assert.True(t, result.Success)

		history, err := svc.GetHistory(ctx, testWallet)
		require.NoError(t, err)
		assert.Len(t, history, 2)
	})

	t.Run("Wallet Case Does Not Matter", func(t *testing.T) {
		svc, _ := newTestFaucet()
		mixed := "0xABCDEF1234567890ABCDEF1234567890ABCDEF12"

		first, err := svc.RequestTokens(ctx, mixed)
		require.NoError(t, err)
		require.True(t, first.Success)

		second, err := svc.RequestTokens(ctx, strings.ToLower(mixed))
		require.NoError(t, err)
		assert.False(t, second.Success)

		history, err := svc.GetHistory(ctx, mixed)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, strings.ToLower(mixed), history[0].WalletAddress)
	})

	t.Run("Cooldown Is Per Wallet", func(t *testing.T) {
		svc, _ := newTestFaucet()

		first, err := svc.RequestTokens(ctx, testWallet)
		require.NoError(t, err)
		require.True(t, first.Success)

		other, err := svc.RequestTokens(ctx, "0x00000000000000000000000000000000000000aa")
		require.NoError(t, err)
		assert.True(t, other.Success)
	})

	t.Run("Invalid Wallet Is Rejected", func(t *testing.T) {
		svc, _ := newTestFaucet()

		for _, wallet := range []string{"", "0x123", "1234567890abcdef1234567890abcdef12345678", "0xZZ34567890abcdef1234567890abcdef12345678"} {
			_, err := svc.RequestTokens(ctx, wallet)
			assert.ErrorIs(t, err, ErrInvalidWallet, wallet)

			_, err = svc.GetHistory(ctx, wallet)
			assert.ErrorIs(t, err, ErrInvalidWallet, wallet)
		}
	})

	t.Run("History Is Newest First And Capped", func(t *testing.T) {
		svc, clock := newTestFaucet()

		var hashes []string
		for i := 0; i < 12; i++ {
			result, err := svc.RequestTokens(ctx, testWallet)
			require.NoError(t, err)
			require.True(t, result.Success)
			hashes = append(hashes, result.TxHash)
			clock.Advance(FaucetCooldown + time.Minute)
		}

		history, err := svc.GetHistory(ctx, testWallet)
		require.NoError(t, err)
		require.Len(t, history, FaucetHistoryLimit)
		assert.Equal(t, hashes[11], history[0].TxHash)
		assert.Equal(t, hashes[2], history[9].TxHash)
		for i := 1; i < len(history); i++ {
			assert.True(t, history[i-1].Timestamp.After(history[i].Timestamp))
		}
	})

	t.Run("Empty History Is Not Nil", func(t *testing.T) {
		svc, _ := newTestFaucet()

		history, err := svc.GetHistory(ctx, testWallet)
		require.NoError(t, err)
		assert.NotNil(t, history)
		assert.Empty(t, history)
	})

	t.Run("Notifier Receives Grants Only", func(t *testing.T) {
		notifier := &recordingNotifier{}
		svc, _ := newTestFaucet(WithGrantNotifier(notifier))

		granted, err := svc.RequestTokens(ctx, testWallet)
		require.NoError(t, err)
		_, err = svc.RequestTokens(ctx, testWallet)
		require.NoError(t, err)

		require.Len(t, notifier.grants, 1)
		assert.Equal(t, granted.TxHash, notifier.grants[0].TxHash)
		assert.Equal(t, testWallet, notifier.grants[0].WalletAddress)
	})

	t.Run("Notifier Failure Does Not Fail The Grant", func(t *testing.T) {
		notifier := &recordingNotifier{err: errors.New("broker down")}
		svc, _ := newTestFaucet(WithGrantNotifier(notifier))

		result, err := svc.RequestTokens(ctx, testWallet)
		require.NoError(t, err)
		assert.True(t, result.Success)
	})

	t.Run("Tx Hash Failure Records Nothing", func(t *testing.T) {
		svc, _ := newTestFaucet(WithTxHashGenerator(func() (string, error) {
			return "", errors.New("entropy exhausted")
		}))

		_, err := svc.RequestTokens(ctx, testWallet)
		require.Error(t, err)

		history, err := svc.GetHistory(ctx, testWallet)
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("Store Errors Propagate", func(t *testing.T) {
		boom := errors.New("connection reset")
		svc := NewFaucetService(failingFaucetRepo{err: boom})

		_, err := svc.RequestTokens(ctx, testWallet)
		assert.ErrorIs(t, err, boom)

		_, err = svc.GetHistory(ctx, testWallet)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("Concurrent Requests Grant Once", func(t *testing.T) {
		svc, _ := newTestFaucet()

		const callers = 20
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			granted int
		)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				result, err := svc.RequestTokens(ctx, testWallet)
				if err != nil || !result.Success {
					return
				}
				mu.Lock()
				granted++
				mu.Unlock()
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, granted)
	})
}

type failingFaucetRepo struct{ err error }

func (r failingFaucetRepo) WithinWalletLock(_ context.Context, _ string, fn func(repository.FaucetRepository) error) error {
	return fn(r)
}

func (r failingFaucetRepo) LatestAfter(context.Context, string, time.Time) (*models.FaucetRequest, error) {
	return nil, r.err
}

func (r failingFaucetRepo) Create(context.Context, *models.FaucetRequest) error {
	return r.err
}

func (r failingFaucetRepo) History(context.Context, string, int) ([]models.FaucetRequest, error) {
	return nil, r.err
}

func TestCooldownResult(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		remaining time.Duration
		hours     int
	}{
		{24 * time.Hour, 24},
		{23*time.Hour + time.Second, 24},
		{time.Hour, 1},
		{time.Second, 1},
		{0, 1},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s remaining", tc.remaining), func(t *testing.T) {
			result := cooldownResult(now.Add(tc.remaining), now)
			assert.Equal(t, tc.hours, result.HoursRemaining)
			assert.False(t, result.Success)
		})
	}
}
