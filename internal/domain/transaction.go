package domain

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction kinds
const (
	KindDeposit    = "deposit"
	KindWithdrawal = "withdrawal"
	KindReward     = "reward"
)

// Transaction statuses
const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
	StatusFailed    = "failed"
)

// Transaction Model. Rows are immutable once created; the coin is matched to a
// wallet by (user, coin), not by wallet id.
type Transaction struct {
	ID              uuid.UUID       `gorm:"type:char(36);primaryKey" json:"activity_id"`
	UserID          uuid.UUID       `gorm:"type:char(36);not null;index" json:"user_id"`
	ActivityKey     string          `gorm:"type:varchar(32);not null" json:"activity_key"`   // deposit | withdrawal | reward
	ActivityTitle   string          `gorm:"type:varchar(64);not null" json:"activity_title"` // e.g. "Deposit"
	ActivityName    string          `gorm:"type:varchar(64);not null" json:"activity_name"`  // Display label, same as title
	AccountName     string          `gorm:"type:varchar(10);not null;index" json:"account_name"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"amount"`
	TransactionDate int64           `gorm:"not null;index" json:"transaction_date"` // Epoch milliseconds
	Status          string          `gorm:"type:varchar(16);not null;default:completed" json:"status"`
}

// BeforeCreate assigns an id to new rows
func (t *Transaction) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// ActivityKeyFor returns the ledger key for a free-form type
func ActivityKeyFor(kind string) string {
	return strings.ToLower(strings.TrimSpace(kind))
}

// TitleFor capitalizes the first letter of a type for display
func TitleFor(kind string) string {
	key := ActivityKeyFor(kind)
	if key == "" {
		return ""
	}
	return strings.ToUpper(key[:1]) + key[1:]
}

// NormalizeStatus lowercases a status; empty means completed
func NormalizeStatus(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return StatusCompleted
	}
	return status
}

// ValidStatus reports whether status is completed, pending or failed
func ValidStatus(status string) bool {
	switch status {
	case StatusCompleted, StatusPending, StatusFailed:
		return true
	}
	return false
}
