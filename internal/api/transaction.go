package api

import (
	"bytes"         // Body inspection
	"encoding/json" // Per-element decoding
	"fmt"           // Message formatting
	"io"            // Body reading
	"net/http"      // HTTP status codes

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Structured logging

	"crypto_wallet/internal/domain"     // Importing domain models
	"crypto_wallet/internal/ledger"     // Balance mutations
	"crypto_wallet/internal/middleware" // Caller identity
	"crypto_wallet/internal/utils"      // Cache helpers
)

const maxTransactionBody = 1 << 20 // 1 MiB batch limit

// ListTransactionsHandler returns every transaction of the caller, newest first
func ListTransactionsHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		txs, err := svc.Transactions(c.Request.Context(), userID, "")
		if err != nil {
			respondError(c, err, "Error fetching transactions")
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": len(txs), "transactions": transactionResponses(txs)})
	}
}

// TransactionsByWalletHandler returns the caller's transactions for one coin
func TransactionsByWalletHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		coin := domain.NormalizeCoin(c.Param("coin")) // Case-insensitive coin
		txs, err := svc.Transactions(c.Request.Context(), userID, coin)
		if err != nil {
			respondError(c, err, "Error fetching transactions by wallet")
			return
		}
		c.JSON(http.StatusOK, gin.H{"coin": coin, "count": len(txs), "transactions": transactionResponses(txs)})
	}
}

// CreateTransactionsHandler records one object or an array of transactions.
// Elements that are malformed or miss coin, type or amount are skipped.
func CreateTransactionsHandler(svc *ledger.Service, rdb redis.Cmdable) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxTransactionBody))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		elements, err := splitBatch(body) // Accept one object or many
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if len(elements) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No transaction data provided"})
			return
		}
		reqs := make([]ledger.Request, 0, len(elements))
		for i, raw := range elements {
			var req ledger.Request
			if err := json.Unmarshal(raw, &req); err != nil {
				logrus.WithFields(logrus.Fields{"user_id": userID, "index": i}).Debug("skipping undecodable transaction")
				continue // Malformed elements are skipped like incomplete ones
			}
			reqs = append(reqs, req)
		}
		created, err := svc.Apply(c.Request.Context(), userID, reqs)
		if len(created) > 0 {
			invalidateTotal(c.Request.Context(), rdb, userID)                                   // Balances may have moved
			_ = utils.DeleteCachePrefix(c.Request.Context(), rdb, adminTransactionsCachePrefix) // Admin listings are stale
		}
		if err != nil {
			respondError(c, err, "Error creating transactions")
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message":      fmt.Sprintf("%d transaction(s) added successfully", len(created)),
			"count":        len(created),                  // Number of rows recorded
			"transactions": transactionResponses(created), // Recorded rows
		})
	}
}

// splitBatch returns the raw elements of a JSON array, or the body itself when it is a single value
func splitBatch(body []byte) ([]json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, io.ErrUnexpectedEOF
	}
	if body[0] == '[' {
		var elements []json.RawMessage
		if err := json.Unmarshal(body, &elements); err != nil {
			return nil, err
		}
		return elements, nil
	}
	if body[0] != '{' || !json.Valid(body) {
		return nil, fmt.Errorf("expected a json object or array")
	}
	return []json.RawMessage{body}, nil
}
