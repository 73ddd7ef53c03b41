package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework

	"crypto_wallet/internal/pricecache" // Price snapshot cache
)

// PricesHandler serves BTC, ETH and LTC prices with 7-day charts from the price cache
func PricesHandler(cache *pricecache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := cache.Get(c.Request.Context(), c.Query("currency")) // Defaults to usd
		if err != nil {
			status, message := statusFor(err, "Failed to fetch crypto data.")
			c.JSON(status, gin.H{"success": false, "error": message})
			return
		}
		body := gin.H{
			"success": true,                        // Data is present
			"cached":  res.Cached() || res.Stale(), // Served from the cache
			"source":  res.Source,                  // cache, live or stale
			"data":    res.Payload,                 // Snapshot, byte for byte
		}
		if res.Stale() {
			body["stale"] = true
			body["message"] = "Price feed unavailable, serving last cached data."
			body["fetched_at"] = res.FetchedAt
		}
		c.JSON(http.StatusOK, body)
	}
}
