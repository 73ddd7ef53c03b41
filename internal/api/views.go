package api

import (
	"time" // Timestamps

	"github.com/google/uuid" // Identifiers

	"crypto_wallet/internal/domain" // Importing domain models
)

// WalletResponse renders balances with their fixed column precision
type WalletResponse struct {
	ID          uuid.UUID `json:"id"`           // Wallet ID
	UserID      uuid.UUID `json:"user_id"`      // Owner
	Coin        string    `json:"coin"`         // BTC or ETH
	BalanceCoin string    `json:"balance_coin"` // 8 decimal places
	BalanceUSD  string    `json:"balance_usd"`  // 2 decimal places
	UpdatedAt   time.Time `json:"updated_at"`   // Last mutation
}

func walletResponse(w domain.Wallet) WalletResponse {
	return WalletResponse{
		ID:          w.ID,
		UserID:      w.UserID,
		Coin:        w.Coin,
		BalanceCoin: w.BalanceCoin.StringFixed(domain.CoinPlaces),
		BalanceUSD:  w.BalanceUSD.StringFixed(domain.USDPlaces),
		UpdatedAt:   w.UpdatedAt,
	}
}

func walletResponses(ws []domain.Wallet) []WalletResponse {
	out := make([]WalletResponse, len(ws))
	for i, w := range ws {
		out[i] = walletResponse(w)
	}
	return out
}

// TransactionResponse is one ledger row as returned by the API
type TransactionResponse struct {
	ActivityID      uuid.UUID `json:"activity_id"`      // Transaction ID
	UserID          uuid.UUID `json:"user_id"`          // Owner
	ActivityKey     string    `json:"activity_key"`     // deposit, withdrawal, reward...
	ActivityTitle   string    `json:"activity_title"`   // Display title
	ActivityName    string    `json:"activity_name"`    // Display label
	AccountName     string    `json:"account_name"`     // Coin symbol
	Amount          string    `json:"amount"`           // Unsigned, 8 decimal places
	TransactionDate int64     `json:"transaction_date"` // Epoch milliseconds
	Status          string    `json:"status"`           // completed, pending, failed
}

func transactionResponses(txs []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txs))
	for i, t := range txs {
		out[i] = TransactionResponse{
			ActivityID:      t.ID,
			UserID:          t.UserID,
			ActivityKey:     t.ActivityKey,
			ActivityTitle:   t.ActivityTitle,
			ActivityName:    t.ActivityName,
			AccountName:     t.AccountName,
			Amount:          t.Amount.StringFixed(domain.CoinPlaces),
			TransactionDate: t.TransactionDate,
			Status:          t.Status,
		}
	}
	return out
}

// UserResponse is the public view of a user
type UserResponse struct {
	ID            uuid.UUID `json:"id"`             // User ID
	Name          string    `json:"name"`           // Display name
	Email         string    `json:"email"`          // Normalized email
	Role          string    `json:"role"`           // user or admin
	EmailVerified bool      `json:"email_verified"` // Verification state
	CreatedAt     time.Time `json:"created_at"`     // Registration time
}

func userResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}
