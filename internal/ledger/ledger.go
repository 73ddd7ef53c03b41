// Package ledger keeps wallet balances and the transaction log in step.
//
// Two mutation paths exist and intentionally behave differently:
//
//   - Apply (batch) always appends a ledger row and adjusts the balance only
//     when the (user, coin) wallet already exists; withdrawals clamp at zero.
//   - UpdateBalance (single) find-or-creates the wallet, rejects overdrafts and
//     never writes a ledger row.
//
// Each mutation runs inside one database transaction holding a row lock on
// the wallet, so concurrent requests against the same wallet serialize.
package ledger

import (
	"context" // Request-scoped cancellation
	"errors"  // Error matching
	"fmt"     // Error wrapping
	"time"    // Transaction timestamps

	"github.com/google/uuid"        // User identifiers
	"github.com/shopspring/decimal" // Fixed-point amounts
	"github.com/sirupsen/logrus"    // Structured logging

	"crypto_wallet/internal/domain" // Importing domain models
	"crypto_wallet/internal/store"  // Persistence
)

// Single-path operation types.
const (
	OpDeposit  = "deposit"
	OpWithdraw = "withdraw"
)

var (
	ErrMissingFields     = errors.New("coin, amount, and type are required")
	ErrInvalidType       = errors.New("invalid transaction type")
	ErrUnsupportedCoin   = errors.New("unsupported coin")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// UnitPricer returns the current USD price of one unit of each supported coin,
// keyed by coin symbol.
type UnitPricer interface {
	UnitPrices(ctx context.Context) (map[string]decimal.Decimal, error)
}

type Service struct {
	store  *store.Store
	prices UnitPricer
	now    func() time.Time
}

func New(st *store.Store, prices UnitPricer) *Service {
	return &Service{store: st, prices: prices, now: time.Now}
}

// WithClock replaces the clock used for transaction timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Request is one element of a batch transaction submission.
type Request struct {
	Coin   string          `json:"coin"`
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Status string          `json:"status"`
}

// complete reports whether r carries coin, type and amount and, if set, a known status.
func (r Request) complete() bool {
	return domain.NormalizeCoin(r.Coin) != "" &&
		domain.ActivityKeyFor(r.Type) != "" &&
		!r.Amount.IsZero() &&
		domain.ValidStatus(domain.NormalizeStatus(r.Status))
}

// Apply records every complete request and adjusts existing wallets.
// Incomplete requests are skipped without error. The created rows are
// returned in submission order.
func (s *Service) Apply(ctx context.Context, userID uuid.UUID, reqs []Request) ([]domain.Transaction, error) {
	created := make([]domain.Transaction, 0, len(reqs))
	for i, req := range reqs {
		if !req.complete() {
			logrus.WithFields(logrus.Fields{"user_id": userID, "index": i}).Debug("skipping incomplete transaction request")
			continue
		}
		tx, err := s.applyOne(ctx, userID, req)
		if err != nil {
			return created, fmt.Errorf("apply transaction %d: %w", i, err)
		}
		created = append(created, *tx)
	}
	return created, nil
}

func (s *Service) applyOne(ctx context.Context, userID uuid.UUID, req Request) (*domain.Transaction, error) {
	key := domain.ActivityKeyFor(req.Type)       // Lowercase activity key
	coin := domain.NormalizeCoin(req.Coin)       // Upper-case coin symbol
	amount := req.Amount.Abs()                   // Direction comes from the type
	status := domain.NormalizeStatus(req.Status) // Defaults to completed
	row := &domain.Transaction{
		UserID:          userID,
		ActivityKey:     key,
		ActivityTitle:   domain.TitleFor(key),
		ActivityName:    domain.TitleFor(key),
		AccountName:     coin,
		Amount:          amount,
		TransactionDate: s.now().UnixMilli(),
		Status:          status,
	}

	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.CreateTransaction(ctx, row); err != nil { // Ledger row first
			return err
		}
		w, err := tx.FindWallet(ctx, userID, coin, true) // Lock the wallet row
		if errors.Is(err, store.ErrNotFound) {
			logrus.WithFields(logrus.Fields{"user_id": userID, "coin": coin}).Info("no wallet for transaction, ledger only")
			return nil
		}
		if err != nil {
			return err
		}

		before := w.BalanceCoin // Balance before this element
		switch key {
		case domain.KindDeposit, domain.KindReward:
			w.BalanceCoin = before.Add(amount)
		case domain.KindWithdrawal:
			w.BalanceCoin = decimal.Max(decimal.Zero, before.Sub(amount))
			if amount.GreaterThan(before) {
				logrus.WithFields(logrus.Fields{"user_id": userID, "coin": coin, "balance": before, "amount": amount}).
					Warn("withdrawal exceeds balance, clamped to zero")
			}
		default:
			return nil // Unknown kinds are recorded but move no funds
		}
		return tx.SaveBalanceCoin(ctx, w) // Persist the new balance
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":        userID,
		"transaction_id": row.ID,
		"coin":           coin,
		"type":           key,
		"amount":         amount,
		"status":         status,
	}).Info("Ledger transaction recorded")
	return row, nil
}

// UpdateRequest is a single deposit or withdraw against a wallet.
type UpdateRequest struct {
	Coin   string          `json:"coin"`
	Amount decimal.Decimal `json:"amount"`
	Type   string          `json:"type"`
}

// UpdateBalance deposits into or withdraws from the user's wallet, creating
// the wallet if needed. An overdraft fails with ErrInsufficientFunds and
// leaves everything untouched.
func (s *Service) UpdateBalance(ctx context.Context, userID uuid.UUID, req UpdateRequest) (*domain.Wallet, error) {
	coin := domain.NormalizeCoin(req.Coin)
	op := domain.ActivityKeyFor(req.Type) // deposit or withdraw
	if coin == "" || op == "" || req.Amount.IsZero() {
		return nil, ErrMissingFields
	}
	if op != OpDeposit && op != OpWithdraw {
		return nil, ErrInvalidType
	}
	if !domain.SupportedCoin(coin) {
		return nil, ErrUnsupportedCoin
	}
	amount := req.Amount.Abs()

	var wallet *domain.Wallet
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		w, _, err := tx.FindOrCreateWallet(ctx, userID, coin, true) // Create the wallet on first use
		if err != nil {
			return err
		}
		if op == OpWithdraw {
			if w.BalanceCoin.LessThan(amount) {
				return ErrInsufficientFunds // Rolls back, nothing written
			}
			w.BalanceCoin = w.BalanceCoin.Sub(amount)
		} else {
			w.BalanceCoin = w.BalanceCoin.Add(amount)
		}
		if err := tx.SaveBalanceCoin(ctx, w); err != nil {
			return err
		}
		wallet = w // Hand the result out of the tx
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"coin":    coin,
		"type":    op,
		"amount":  amount,
		"balance": wallet.BalanceCoin.StringFixed(domain.CoinPlaces),
	}).Info("Wallet balance updated")
	return wallet, nil
}
