package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Supported coins
const (
	CoinBTC = "BTC"
	CoinETH = "ETH"
)

// Coins lists every coin a user gets a wallet for.
var Coins = []string{CoinBTC, CoinETH}

// Decimal places of the wallet balance columns.
const (
	CoinPlaces = 8
	USDPlaces  = 2
)

// Wallet Model. At most one row exists per (user, coin).
type Wallet struct {
	ID          uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	UserID      uuid.UUID       `gorm:"type:char(36);not null;uniqueIndex:idx_wallet_user_coin" json:"user_id"`
	Coin        string          `gorm:"type:varchar(10);not null;uniqueIndex:idx_wallet_user_coin" json:"coin"`
	BalanceCoin decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"balance_coin"`
	BalanceUSD  decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"balance_usd"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// BeforeCreate assigns an id and normalizes the coin symbol
func (w *Wallet) BeforeCreate(*gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	w.Coin = NormalizeCoin(w.Coin)
	return nil
}

// NormalizeCoin upper-cases and trims a coin symbol
func NormalizeCoin(coin string) string {
	return strings.ToUpper(strings.TrimSpace(coin))
}

// SupportedCoin reports whether coin (already normalized) has a wallet kind
func SupportedCoin(coin string) bool {
	for _, c := range Coins {
		if c == coin {
			return true
		}
	}
	return false
}
