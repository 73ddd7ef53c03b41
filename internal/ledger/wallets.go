package ledger

import (
	"context" // Request-scoped cancellation
	"fmt"     // Error wrapping

	"github.com/google/uuid"        // User identifiers
	"github.com/shopspring/decimal" // Fixed-point amounts
	"github.com/sirupsen/logrus"    // Structured logging

	"crypto_wallet/internal/domain" // Importing domain models
)

// InitWallets find-or-creates a wallet for every supported coin and returns
// only the wallets this call created.
func (s *Service) InitWallets(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	created := []domain.Wallet{} // Empty slice, not null, in JSON
	for _, coin := range domain.Coins {
		w, isNew, err := s.store.FindOrCreateWallet(ctx, userID, coin, false) // Idempotent per coin
		if err != nil {
			return nil, err
		}
		if isNew {
			created = append(created, *w)
		}
	}
	return created, nil
}

func (s *Service) Wallets(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	return s.store.ListWallets(ctx, userID)
}

func (s *Service) Transactions(ctx context.Context, userID uuid.UUID, coin string) ([]domain.Transaction, error) {
	return s.store.ListTransactions(ctx, userID, coin)
}

// Holding is one coin's slice of a wallet total.
type Holding struct {
	BalanceCoin decimal.Decimal
	BalanceUSD  decimal.Decimal
}

// Total summarizes a user's wallets; coins without a wallet count as zero.
type Total struct {
	BTC      Holding
	ETH      Holding
	TotalUSD decimal.Decimal
}

func (s *Service) Total(ctx context.Context, userID uuid.UUID) (Total, error) {
	wallets, err := s.store.ListWallets(ctx, userID)
	if err != nil {
		return Total{}, err
	}
	var t Total
	for _, w := range wallets {
		h := Holding{BalanceCoin: w.BalanceCoin, BalanceUSD: w.BalanceUSD}
		switch w.Coin {
		case domain.CoinBTC:
			t.BTC = h
		case domain.CoinETH:
			t.ETH = h
		}
	}
	t.TotalUSD = t.BTC.BalanceUSD.Add(t.ETH.BalanceUSD) // Sum of USD balances
	return t, nil
}

// RefreshUSD reprices every wallet of the user from live unit prices and
// returns the prices used. Wallet rows are written one at a time; a failure
// part way leaves earlier rows updated.
func (s *Service) RefreshUSD(ctx context.Context, userID uuid.UUID) (map[string]decimal.Decimal, error) {
	prices, err := s.prices.UnitPrices(ctx) // Live prices, not the snapshot cache
	if err != nil {
		return nil, fmt.Errorf("fetch unit prices: %w", err)
	}
	wallets, err := s.store.ListWallets(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range wallets {
		w := &wallets[i]
		price, ok := prices[w.Coin]
		if !ok {
			continue // No price for this coin
		}
		w.BalanceUSD = w.BalanceCoin.Mul(price) // Rounded to cents on save
		if err := s.store.SaveBalanceUSD(ctx, w); err != nil {
			return nil, err
		}
	}
	logrus.WithFields(logrus.Fields{"user_id": userID, "wallets": len(wallets)}).Info("Wallet USD balances refreshed")
	return prices, nil
}
