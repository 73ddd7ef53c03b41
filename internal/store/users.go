package store

import (
	"context" // Request-scoped cancellation
	"errors"  // Error matching
	"fmt"     // Error wrapping

	"github.com/google/uuid" // User identifiers
	"gorm.io/gorm"           // GORM ORM library

	"crypto_wallet/internal/domain" // Importing domain models
)

// CreateUser inserts u. A duplicate email yields ErrEmailTaken.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	if err := s.conn(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken // Unique email index
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := s.conn(ctx).Where("email = ?", domain.NormalizeEmail(email)).First(&u).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) FindUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := s.conn(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// MarkEmailVerified sets email_verified on the user; it is a no-op when already set.
func (s *Store) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	res := s.conn(ctx).Model(&domain.User{}).Where("id = ?", id).Update("email_verified", true)
	if res.Error != nil {
		return fmt.Errorf("verify email: %w", res.Error)
	}
	return nil
}

// ListUsers returns one page of users, newest first, with the total count.
func (s *Store) ListUsers(ctx context.Context, offset, limit int) ([]domain.User, int64, error) {
	var total int64 // Total number of users
	if err := s.conn(ctx).Model(&domain.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	var users []domain.User
	err := s.conn(ctx).
		Order("created_at desc"). // Newest first
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}
