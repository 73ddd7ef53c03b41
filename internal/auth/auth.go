// Package auth handles registration, login and email verification.
package auth

import (
	"context" // Request-scoped cancellation
	"errors"  // Error matching
	"fmt"     // Error wrapping
	"strings" // Input normalization
	"time"    // Token lifetime

	"github.com/google/uuid"     // User identifiers
	"github.com/sirupsen/logrus" // Structured logging
	"golang.org/x/crypto/bcrypt" // Password hashing

	"crypto_wallet/internal/domain" // Importing domain models
	"crypto_wallet/internal/mailer" // Verification email
	"crypto_wallet/internal/store"  // Persistence
	"crypto_wallet/internal/utils"  // JWT helpers
)

var (
	ErrInvalidCredentials = errors.New("wrong email or password")
	ErrEmailNotVerified   = errors.New("please verify your email before logging in")
	ErrForbidden          = errors.New("admin access required")
	ErrInvalidTarget      = errors.New("invalid target user id")
	ErrEmailDelivery      = errors.New("email delivery failed")
)

// Verification outcomes, used as the status query of the frontend page.
const (
	VerifySuccess = "success"
	VerifyInvalid = "invalid"
	VerifyFailed  = "failed"
)

type Options struct {
	Secret      string
	TokenTTL    time.Duration
	FrontendURL string
	BcryptCost  int
}

type Service struct {
	store     *store.Store
	mail      mailer.Sender
	opts      Options
	dummyHash []byte
}

func New(st *store.Store, mail mailer.Sender, opts Options) (*Service, error) {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	// Compared against when the account does not exist so both paths cost one bcrypt.
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}
	return &Service{store: st, mail: mail, opts: opts, dummyHash: dummy}, nil
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// Register creates the user with zero-balance wallets for every coin and sends
// the verification email. The user is kept even when delivery fails.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	role := strings.ToLower(strings.TrimSpace(in.Role))
	if !domain.ValidRole(role) {
		role = domain.RoleUser // Unknown roles fall back to user
	}
	user := &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        domain.NormalizeEmail(in.Email),
		PasswordHash: string(hash),
		Role:         role,
	}
	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		_, err := tx.CreateWallets(ctx, user.ID) // Zero-balance BTC and ETH
		return err
	})
	if err != nil {
		return nil, err
	}
	log := logrus.WithFields(logrus.Fields{"user_id": user.ID, "email": user.Email, "role": user.Role})
	log.Info("User registered")

	token, err := utils.GenerateJWT(user.ID, user.Email, utils.PurposeVerify, s.opts.Secret, s.opts.TokenTTL)
	if err != nil {
		return user, fmt.Errorf("verification token: %w", err)
	}
	msg, err := mailer.VerificationEmail(user.Email, user.Name, mailer.VerificationLink(s.opts.FrontendURL, token))
	if err != nil {
		return user, fmt.Errorf("render verification email: %w", err)
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		log.WithError(err).Error("Verification email not delivered")
		return user, fmt.Errorf("%w: %v", ErrEmailDelivery, err)
	}
	log.Info("Verification email dispatched")
	return user, nil
}

// Login checks credentials and returns a session token. Unknown accounts and
// wrong passwords fail alike; unverified accounts fail distinctly.
func (s *Service) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.store.FindUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password)) // Same cost as a real check
		logrus.WithField("email", domain.NormalizeEmail(email)).Info("Login failed")
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if !user.EmailVerified {
		logrus.WithField("user_id", user.ID).Info("Login blocked, email not verified")
		return "", nil, ErrEmailNotVerified // Checked before the password
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logrus.WithField("user_id", user.ID).Info("Login failed")
		return "", nil, ErrInvalidCredentials
	}
	token, err := utils.GenerateJWT(user.ID, user.Email, utils.PurposeSession, s.opts.Secret, s.opts.TokenTTL)
	if err != nil {
		return "", nil, fmt.Errorf("session token: %w", err)
	}
	logrus.WithField("user_id", user.ID).Info("Login successful")
	return token, user, nil
}

// Verify consumes a verification token and reports the outcome.
func (s *Service) Verify(ctx context.Context, token string) string {
	claims, err := utils.ParseJWT(token, s.opts.Secret, utils.PurposeVerify)
	if err != nil {
		logrus.WithError(err).Info("Email verification token rejected")
		return VerifyFailed
	}
	id, err := claims.ID()
	if err != nil {
		return VerifyFailed
	}
	user, err := s.store.FindUserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return VerifyInvalid
	}
	if err != nil {
		logrus.WithError(err).Error("Email verification lookup failed")
		return VerifyFailed
	}
	if !user.EmailVerified {
		if err := s.store.MarkEmailVerified(ctx, user.ID); err != nil {
			logrus.WithError(err).Error("Email verification update failed")
			return VerifyFailed
		}
		logrus.WithField("user_id", user.ID).Info("Email verified")
	}
	return VerifySuccess
}

// Profile returns the user and their wallets.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*domain.User, []domain.Wallet, error) {
	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	wallets, err := s.store.ListWallets(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return user, wallets, nil
}

// AuthorizeTarget resolves the user a wallet operation applies to. An empty
// target or the caller's own id means the caller; any other user requires the
// admin role and must exist.
func (s *Service) AuthorizeTarget(ctx context.Context, callerID uuid.UUID, target string) (uuid.UUID, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return callerID, nil // Acting on yourself
	}
	targetID, err := uuid.Parse(target)
	if err != nil {
		return uuid.Nil, ErrInvalidTarget
	}
	if targetID == callerID {
		return callerID, nil
	}
	caller, err := s.store.FindUserByID(ctx, callerID)
	if err != nil {
		return uuid.Nil, err
	}
	if caller.Role != domain.RoleAdmin {
		logrus.WithFields(logrus.Fields{"user_id": callerID, "target_user_id": targetID}).Warn("Non-admin attempted to act on another user")
		return uuid.Nil, ErrForbidden
	}
	if _, err := s.store.FindUserByID(ctx, targetID); err != nil {
		return uuid.Nil, err
	}
	return targetID, nil
}
