package store

import (
	"context" // Request-scoped cancellation
	"fmt"     // Error wrapping

	"github.com/google/uuid" // User identifiers
	"gorm.io/gorm/clause"    // Row locks and upserts

	"crypto_wallet/internal/domain" // Importing domain models
)

// FindWallet returns the wallet for (userID, coin). With forUpdate the row is
// locked until the surrounding transaction ends.
func (s *Store) FindWallet(ctx context.Context, userID uuid.UUID, coin string, forUpdate bool) (*domain.Wallet, error) {
	q := s.conn(ctx)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"}) // SELECT ... FOR UPDATE
	}
	var w domain.Wallet
	err := q.Where("user_id = ? AND coin = ?", userID, domain.NormalizeCoin(coin)).First(&w).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &w, nil
}

// FindOrCreateWallet returns the wallet for (userID, coin), inserting a
// zero-balance row when none exists. created reports whether this call inserted it.
// The unique (user_id, coin) index makes concurrent callers converge on one row.
func (s *Store) FindOrCreateWallet(ctx context.Context, userID uuid.UUID, coin string, forUpdate bool) (w *domain.Wallet, created bool, err error) {
	fresh := &domain.Wallet{UserID: userID, Coin: domain.NormalizeCoin(coin)}
	res := s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(fresh) // Insert unless it already exists
	if res.Error != nil {
		return nil, false, fmt.Errorf("create wallet: %w", res.Error)
	}
	w, err = s.FindWallet(ctx, userID, coin, forUpdate)
	if err != nil {
		return nil, false, err
	}
	return w, res.RowsAffected == 1, nil // Inserted by this call
}

func (s *Store) ListWallets(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	var wallets []domain.Wallet
	err := s.conn(ctx).Where("user_id = ?", userID).Order("coin asc").Find(&wallets).Error
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	return wallets, nil
}

// SaveBalanceCoin writes balance_coin and refreshes updated_at.
func (s *Store) SaveBalanceCoin(ctx context.Context, w *domain.Wallet) error {
	w.BalanceCoin = w.BalanceCoin.Round(domain.CoinPlaces) // 8 decimal places
	return s.updateWallet(ctx, w, "balance_coin", w.BalanceCoin)
}

// SaveBalanceUSD writes balance_usd and refreshes updated_at.
func (s *Store) SaveBalanceUSD(ctx context.Context, w *domain.Wallet) error {
	w.BalanceUSD = w.BalanceUSD.Round(domain.USDPlaces)
	return s.updateWallet(ctx, w, "balance_usd", w.BalanceUSD)
}

func (s *Store) updateWallet(ctx context.Context, w *domain.Wallet, column string, value any) error {
	res := s.conn(ctx).Model(w).Update(column, value) // gorm bumps updated_at on Update
	if res.Error != nil {
		return fmt.Errorf("update wallet %s: %w", column, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateWallets inserts zero-balance wallets for every supported coin.
func (s *Store) CreateWallets(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	wallets := make([]domain.Wallet, 0, len(domain.Coins))
	for _, coin := range domain.Coins {
		wallets = append(wallets, domain.Wallet{UserID: userID, Coin: coin})
	}
	if err := s.conn(ctx).Create(&wallets).Error; err != nil {
		return nil, fmt.Errorf("create wallets: %w", err)
	}
	return wallets, nil
}
