package api

import (
	"errors"   // Error matching
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging

	"crypto_wallet/internal/auth"       // Auth errors
	"crypto_wallet/internal/ledger"     // Ledger errors
	"crypto_wallet/internal/middleware" // Request id key
	"crypto_wallet/internal/pricefeed"  // Upstream errors
	"crypto_wallet/internal/store"      // Persistence errors
)

// errorMapping maps a sentinel error to the status and message returned to clients
type errorMapping struct {
	err     error
	status  int
	message string
}

var errorMappings = []errorMapping{
	{store.ErrEmailTaken, http.StatusBadRequest, "Email already registered"},
	{ledger.ErrMissingFields, http.StatusBadRequest, "coin, amount, and type are required"},
	{ledger.ErrInvalidType, http.StatusBadRequest, "Invalid transaction type"},
	{ledger.ErrUnsupportedCoin, http.StatusBadRequest, "Unsupported coin"},
	{ledger.ErrInsufficientFunds, http.StatusBadRequest, "Insufficient funds"},
	{auth.ErrInvalidTarget, http.StatusBadRequest, "Invalid user_id"},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, "Wrong email or password"},
	{auth.ErrEmailNotVerified, http.StatusForbidden, "Please verify your email before logging in."},
	{auth.ErrForbidden, http.StatusForbidden, "Admin access required"},
	{pricefeed.ErrRateLimited, http.StatusTooManyRequests, "Price feed rate limit reached, please try again shortly."},
	{pricefeed.ErrUpstream, http.StatusBadGateway, "Price feed unavailable"},
}

// statusFor resolves err to a status and client message; fallback is used for unclassified errors
func statusFor(err error, fallback string) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status, m.message
		}
	}
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound, "Not found"
	}
	return http.StatusInternalServerError, fallback
}

// respondError writes the error response for err; internals are only logged
func respondError(c *gin.Context, err error, fallback string) {
	status, message := statusFor(err, fallback)
	entry := logrus.WithError(err).WithFields(logrus.Fields{
		"request_id": c.GetString(middleware.CtxRequestID), // Correlate with the request log
		"path":       c.FullPath(),                         // Route template
		"status":     status,                               // Mapped status
	})
	if status >= http.StatusInternalServerError {
		entry.Error(fallback) // Unexpected failures
	} else {
		entry.Debug(message) // Expected client errors
	}
	c.JSON(status, gin.H{"error": message})
}
