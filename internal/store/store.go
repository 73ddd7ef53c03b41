// Package store persists users, wallets and transactions through gorm.
package store

import (
	"context" // Request-scoped cancellation
	"errors"  // Error matching

	"gorm.io/gorm" // GORM ORM library
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrEmailTaken = errors.New("email already registered")
)

// Store wraps a gorm handle. Inside Transaction the handle is the open tx.
type Store struct {
	db *gorm.DB // Database handle or open transaction
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Transaction runs fn with a Store bound to a single database transaction.
// fn returning an error rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx}) // Same API, bound to tx
	})
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound // Hide the gorm sentinel
	}
	return err
}
