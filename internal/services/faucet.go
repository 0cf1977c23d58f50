package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"stacksave/internal/metrics"
	"stacksave/internal/models"
	"stacksave/internal/repository"
)

const (
	FaucetAmount       int64 = 10000
	FaucetCooldown           = 24 * time.Hour
	FaucetHistoryLimit       = 10
)

var walletPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// IsWalletAddress reports whether addr is 0x followed by 40 hex digits.
func IsWalletAddress(addr string) bool {
	return walletPattern.MatchString(addr)
}

// CanonicalWallet lower-cases an address so differently cased spellings of
// the same wallet share one cooldown.
func CanonicalWallet(addr string) string {
	return strings.ToLower(addr)
}

// GrantNotifier is told about every committed faucet grant.
type GrantNotifier interface {
	NotifyGrant(ctx context.Context, grant models.FaucetRequest) error
}

// FaucetService hands out demo tokens, at most once per wallet per cooldown.
type FaucetService struct {
	repo      repository.FaucetRepository
	notifier  GrantNotifier
	now       func() time.Time
	newTxHash func() (string, error)
}

type FaucetOption func(*FaucetService)

func WithGrantNotifier(n GrantNotifier) FaucetOption {
	return func(s *FaucetService) { s.notifier = n }
}

func WithFaucetClock(now func() time.Time) FaucetOption {
	return func(s *FaucetService) { s.now = now }
}

func WithTxHashGenerator(gen func() (string, error)) FaucetOption {
	return func(s *FaucetService) { s.newTxHash = gen }
}

func NewFaucetService(repo repository.FaucetRepository, opts ...FaucetOption) *FaucetService {
	s := &FaucetService{
		repo:      repo,
		now:       time.Now,
		newTxHash: randomTxHash,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// randomTxHash returns a synthetic 32-byte hash. No transaction is sent.
func randomTxHash() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(b), nil
}

// RequestTokens grants FaucetAmount to the wallet unless it was granted
// within the last FaucetCooldown, in which case the result carries the time
// the wallet becomes eligible again.
func (s *FaucetService) RequestTokens(ctx context.Context, walletAddress string) (*FaucetResult, error) {
	wallet := CanonicalWallet(walletAddress)
	if !IsWalletAddress(wallet) {
		return nil, ErrInvalidWallet
	}

	var (
		result  *FaucetResult
		granted *models.FaucetRequest
	)
	err := s.repo.WithinWalletLock(ctx, wallet, func(repo repository.FaucetRepository) error {
		// Postgres keeps microseconds; truncating keeps cooldownUntil stable
		// between this response and later ones computed from the stored row.
		now := s.now().UTC().Truncate(time.Microsecond)

		last, err := repo.LatestAfter(ctx, wallet, now.Add(-FaucetCooldown))
		if err == nil {
			result = cooldownResult(last.Timestamp.UTC().Add(FaucetCooldown), now)
			return nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("check faucet cooldown: %w", err)
		}

		txHash, err := s.newTxHash()
		if err != nil {
			return fmt.Errorf("generate tx hash: %w", err)
		}
		req := &models.FaucetRequest{
			WalletAddress: wallet,
			Amount:        FaucetAmount,
			TxHash:        txHash,
			Timestamp:     now,
		}
		if err := repo.Create(ctx, req); err != nil {
			return fmt.Errorf("record faucet grant: %w", err)
		}

		granted = req
		result = &FaucetResult{
			Success:       true,
			Amount:        req.Amount,
			TxHash:        req.TxHash,
			CooldownUntil: now.Add(FaucetCooldown),
		}
		return nil
	})
	if err != nil {
		metrics.RecordFaucetOutcome("error")
		return nil, err
	}

	if granted == nil {
		metrics.RecordFaucetOutcome("cooldown")
		return result, nil
	}

	metrics.RecordFaucetOutcome("granted")
	if s.notifier != nil {
		if err := s.notifier.NotifyGrant(ctx, *granted); err != nil {
			logrus.WithError(err).WithField("wallet", wallet).Warn("Failed to publish faucet grant")
		}
	}
	return result, nil
}

func cooldownResult(until, now time.Time) *FaucetResult {
	hours := int(math.Ceil(float64(until.Sub(now)) / float64(time.Hour)))
	if hours < 1 {
		hours = 1
	}
	unit := "hours"
	if hours == 1 {
		unit = "hour"
	}
	return &FaucetResult{
		Success:        false,
		Error:          fmt.Sprintf("You can request again in %d %s", hours, unit),
		CooldownUntil:  until,
		HoursRemaining: hours,
	}
}

// GetHistory returns the wallet's most recent grants, newest first.
func (s *FaucetService) GetHistory(ctx context.Context, walletAddress string) ([]models.FaucetRequest, error) {
	wallet := CanonicalWallet(walletAddress)
	if !IsWalletAddress(wallet) {
		return nil, ErrInvalidWallet
	}

	history, err := s.repo.History(ctx, wallet, FaucetHistoryLimit)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []models.FaucetRequest{}
	}
	return history, nil
}
