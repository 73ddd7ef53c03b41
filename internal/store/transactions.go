package store

import (
	"context" // Request-scoped cancellation
	"fmt"     // Error wrapping

	"github.com/google/uuid" // User identifiers
	"gorm.io/gorm"           // GORM ORM library

	"crypto_wallet/internal/domain" // Importing domain models
)

// CreateTransaction appends a ledger row.
func (s *Store) CreateTransaction(ctx context.Context, t *domain.Transaction) error {
	t.Amount = t.Amount.Round(domain.CoinPlaces) // 8 decimal places
	if err := s.conn(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// ListTransactions returns the user's ledger newest first. A non-empty coin
// restricts the result to that account.
func (s *Store) ListTransactions(ctx context.Context, userID uuid.UUID, coin string) ([]domain.Transaction, error) {
	q := s.conn(ctx).Where("user_id = ?", userID)
	if coin != "" {
		q = q.Where("account_name = ?", domain.NormalizeCoin(coin)) // Coin matched case-insensitively
	}
	var txs []domain.Transaction
	if err := q.Order("transaction_date desc").Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// TransactionFilter narrows ListAllTransactions. Zero fields match everything;
// From and To are inclusive epoch milliseconds.
type TransactionFilter struct {
	UserID uuid.UUID // Owner
	Kind   string    // activity_key
	Coin   string    // account_name
	From   int64     // Inclusive lower bound
	To     int64     // Inclusive upper bound
}

// ListAllTransactions returns one page of every user's ledger, newest first,
// with the total count matching f.
func (s *Store) ListAllTransactions(ctx context.Context, f TransactionFilter, offset, limit int) ([]domain.Transaction, int64, error) {
	var total int64 // Total matching rows
	if err := s.conn(ctx).Model(&domain.Transaction{}).Scopes(f.scope).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}
	var txs []domain.Transaction
	err := s.conn(ctx).Scopes(f.scope).
		Order("transaction_date desc"). // Newest first
		Offset(offset).
		Limit(limit).
		Find(&txs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	return txs, total, nil
}

func (f TransactionFilter) scope(q *gorm.DB) *gorm.DB {
	if f.UserID != uuid.Nil {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Kind != "" {
		q = q.Where("activity_key = ?", domain.ActivityKeyFor(f.Kind))
	}
	if f.Coin != "" {
		q = q.Where("account_name = ?", domain.NormalizeCoin(f.Coin))
	}
	if f.From > 0 {
		q = q.Where("transaction_date >= ?", f.From)
	}
	if f.To > 0 {
		q = q.Where("transaction_date <= ?", f.To)
	}
	return q
}
