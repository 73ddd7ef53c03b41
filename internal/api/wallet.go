package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"time"     // Time durations

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/google/uuid"        // User identifiers
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Fixed-point amounts
	"github.com/sirupsen/logrus"    // Structured logging

	"crypto_wallet/internal/auth"       // Target-user authorization
	"crypto_wallet/internal/domain"     // Importing domain models
	"crypto_wallet/internal/ledger"     // Balance mutations
	"crypto_wallet/internal/middleware" // Caller identity
	"crypto_wallet/internal/utils"      // Cache helpers
)

const totalCacheTTL = 60 * time.Second // Wallet totals cache lifetime

// totalCacheKey is the Redis key of a user's cached wallet total
func totalCacheKey(userID uuid.UUID) string {
	return "wallet:total:user:" + userID.String()
}

// invalidateTotal drops a user's cached total after any balance change
func invalidateTotal(ctx context.Context, rdb redis.Cmdable, userID uuid.UUID) {
	if err := utils.DeleteCache(ctx, rdb, totalCacheKey(userID)); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("failed to invalidate wallet total cache")
	}
}

// TargetRequest optionally names another user to act on
type TargetRequest struct {
	UserID string `json:"user_id"` // Admins only; empty means the caller
}

// UpdateBalanceRequest is a single deposit or withdraw
type UpdateBalanceRequest struct {
	Coin   string          `json:"coin"`    // BTC or ETH, any case
	Amount decimal.Decimal `json:"amount"`  // Absolute value is used
	Type   string          `json:"type"`    // deposit or withdraw
	UserID string          `json:"user_id"` // Admins only; empty means the caller
}

// ListWalletsHandler returns all wallets of the caller
func ListWalletsHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		wallets, err := svc.Wallets(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err, "Error fetching wallets")
			return
		}
		c.JSON(http.StatusOK, walletResponses(wallets)) // Plain array of wallets
	}
}

// InitWalletsHandler find-or-creates the BTC and ETH wallets of the caller or, for admins, of user_id
func InitWalletsHandler(authSvc *auth.Service, svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID, ok := middleware.UserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req TargetRequest // Body is optional
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
		}
		if req.UserID == "" {
			req.UserID = c.Query("user_id") // Query string works too
		}
		userID, err := authSvc.AuthorizeTarget(c.Request.Context(), callerID, req.UserID)
		if err != nil {
			respondError(c, err, "Error initializing wallets")
			return
		}
		created, err := svc.InitWallets(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err, "Error initializing wallets")
			return
		}
		message := "Wallets already exist" // Nothing new
		if len(created) > 0 {
			message = "Wallets created"
		}
		logrus.WithFields(logrus.Fields{
			"user_id":   userID,       // Wallet owner
			"caller_id": callerID,     // Who asked
			"created":   len(created), // Newly created wallets
		}).Info("Wallets initialized")
		c.JSON(http.StatusOK, gin.H{"message": message, "wallets": walletResponses(created)})
	}
}

// UpdatePricesHandler recomputes balance_usd of every wallet of the caller from live prices
func UpdatePricesHandler(svc *ledger.Service, rdb redis.Cmdable) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		prices, err := svc.RefreshUSD(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err, "Error updating wallet prices")
			return
		}
		invalidateTotal(c.Request.Context(), rdb, userID) // USD balances changed
		c.JSON(http.StatusOK, gin.H{
			"message":   "Wallet prices updated successfully",
			"btc_price": prices[domain.CoinBTC].InexactFloat64(), // USD per BTC
			"eth_price": prices[domain.CoinETH].InexactFloat64(), // USD per ETH
		})
	}
}

// holdingView renders one coin of the wallet total
type holdingView struct {
	BalanceCoin string `json:"balance_coin"` // 8 decimal places
	BalanceUSD  string `json:"balance_usd"`  // 2 decimal places
}

// totalView is the cached wallet total body
type totalView struct {
	BTC      holdingView `json:"btc"`       // BTC slice
	ETH      holdingView `json:"eth"`       // ETH slice
	TotalUSD float64     `json:"total_usd"` // Sum of USD balances
}

// TotalHandler returns per-coin balances and the combined USD total of the caller
func TotalHandler(svc *ledger.Service, rdb redis.Cmdable) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := c.Request.Context()
		cacheKey := totalCacheKey(userID) // Per-user cache key
		var cached totalView
		// If cached data found, return it
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"btc": cached.BTC, "eth": cached.ETH, "total_usd": cached.TotalUSD, "cached": true})
			return
		}
		total, err := svc.Total(ctx, userID)
		if err != nil {
			respondError(c, err, "Error retrieving total wallet balance")
			return
		}
		view := totalView{
			BTC: holdingView{
				BalanceCoin: total.BTC.BalanceCoin.StringFixed(domain.CoinPlaces),
				BalanceUSD:  total.BTC.BalanceUSD.StringFixed(domain.USDPlaces),
			},
			ETH: holdingView{
				BalanceCoin: total.ETH.BalanceCoin.StringFixed(domain.CoinPlaces),
				BalanceUSD:  total.ETH.BalanceUSD.StringFixed(domain.USDPlaces),
			},
			TotalUSD: total.TotalUSD.Round(domain.USDPlaces).InexactFloat64(),
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, view, totalCacheTTL) // Cache the response for future requests
		c.JSON(http.StatusOK, gin.H{"btc": view.BTC, "eth": view.ETH, "total_usd": view.TotalUSD, "cached": false})
	}
}

// UpdateBalanceHandler deposits into or withdraws from a wallet, creating it when missing
func UpdateBalanceHandler(authSvc *auth.Service, svc *ledger.Service, rdb redis.Cmdable) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID, ok := middleware.UserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req UpdateBalanceRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": validationDetails(err)})
			return
		}
		userID, err := authSvc.AuthorizeTarget(c.Request.Context(), callerID, req.UserID)
		if err != nil {
			respondError(c, err, "Error updating wallet balance")
			return
		}
		wallet, err := svc.UpdateBalance(c.Request.Context(), userID, ledger.UpdateRequest{
			Coin:   req.Coin,   // Normalized by the ledger
			Amount: req.Amount, // Absolute value is applied
			Type:   req.Type,   // deposit or withdraw
		})
		if err != nil {
			respondError(c, err, "Error updating wallet balance")
			return
		}
		invalidateTotal(c.Request.Context(), rdb, userID) // Balance changed
		c.JSON(http.StatusOK, gin.H{
			"message":      "Wallet " + domain.ActivityKeyFor(req.Type) + " successful",
			"coin":         wallet.Coin,                                       // Normalized coin
			"balance_coin": wallet.BalanceCoin.StringFixed(domain.CoinPlaces), // New balance
		})
	}
}
