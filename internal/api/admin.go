package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"strings"  // String manipulation
	"time"     // Time durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/google/uuid"       // User identifiers
	"github.com/redis/go-redis/v9" // Redis client

	"crypto_wallet/internal/store" // Persistence
	"crypto_wallet/internal/utils" // Utility functions
)

// Admin listing cache prefixes, invalidated on writes
const (
	adminUsersCachePrefix        = "admin:users:"
	adminTransactionsCachePrefix = "admin:txs:"
	adminCacheTTL                = 60 * time.Second
)

// pagination reads page and page_size with defaults 1 and 20, page_size capped at 100
func pagination(c *gin.Context) (page, pageSize int) {
	page = 1      // Default page number
	pageSize = 20 // Default page size
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	// Check and set page size within limits
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v // Set page size
		}
	}
	return page, pageSize
}

// ListUsersHandler returns all users, newest first, paginated
func ListUsersHandler(st *store.Store, rdb redis.Cmdable) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		page, pageSize := pagination(c)
		// Create a cache key based on pagination parameters
		cacheKey := adminUsersCachePrefix + "page=" + strconv.Itoa(page) + ":size=" + strconv.Itoa(pageSize)
		var cached struct {
			Users      []UserResponse `json:"users"`       // List of users
			Page       int            `json:"page"`        // Current page
			PageSize   int            `json:"page_size"`   // Page size
			Total      int64          `json:"total"`       // Total number of users
			TotalPages int            `json:"total_pages"` // Total pages
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"users":       cached.Users,      // List of users
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total number of users
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,              // Indicate response is from cache
			})
			return
		}
		offset := (page - 1) * pageSize // Calculate offset for pagination
		users, total, err := st.ListUsers(ctx, offset, pageSize)
		if err != nil {
			respondError(c, err, "Error fetching users")
			return
		}
		totalPages := (int(total) + pageSize - 1) / pageSize // Calculate total pages
		resp := make([]UserResponse, len(users))
		// Map users to response format
		for i := range users {
			resp[i] = userResponse(&users[i])
		}
		// Prepare final response data
		respData := gin.H{
			"users":       resp,       // List of users
			"page":        page,       // Current page
			"page_size":   pageSize,   // Page size
			"total":       total,      // Total number of users
			"total_pages": totalPages, // Total pages
			"cached":      false,      // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, adminCacheTTL)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}

// ListAllTransactionsHandler returns every user's transactions, filterable by user_id, type, coin, from and to (epoch ms)
func ListAllTransactionsHandler(st *store.Store, rdb redis.Cmdable) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		page, pageSize := pagination(c)
		var filter store.TransactionFilter // Filters from the query string
		if v := c.Query("user_id"); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
				return
			}
			filter.UserID = id
		}
		filter.Kind = c.Query("type")
		filter.Coin = c.Query("coin")
		for param, dst := range map[string]*int64{"from": &filter.From, "to": &filter.To} {
			if v := c.Query(param); v != "" {
				ms, err := strconv.ParseInt(v, 10, 64)
				if err != nil || ms < 0 {
					c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + param})
					return
				}
				*dst = ms
			}
		}
		// Build cache key from all query params
		var keyParts []string
		for _, k := range []string{"user_id", "type", "coin", "from", "to"} {
			keyParts = append(keyParts, k+"="+c.Query(k)) // Append key-value pair
		}
		keyParts = append(keyParts, "page="+strconv.Itoa(page), "size="+strconv.Itoa(pageSize))
		cacheKey := adminTransactionsCachePrefix + strings.Join(keyParts, ":")
		var cached struct {
			Transactions []TransactionResponse `json:"transactions"` // List of transactions
			Page         int                   `json:"page"`         // Current page
			PageSize     int                   `json:"page_size"`    // Page size
			Total        int64                 `json:"total"`        // Total number of transactions
			TotalPages   int                   `json:"total_pages"`  // Total pages
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"transactions": cached.Transactions, // List of transactions
				"page":         cached.Page,         // Current page
				"page_size":    cached.PageSize,     // Page size
				"total":        cached.Total,        // Total number of transactions
				"total_pages":  cached.TotalPages,   // Total pages
				"cached":       true,                // Indicate response is from cache
			})
			return
		}
		offset := (page - 1) * pageSize // Calculate offset for pagination
		txs, total, err := st.ListAllTransactions(ctx, filter, offset, pageSize)
		if err != nil {
			respondError(c, err, "Error fetching transactions")
			return
		}
		totalPages := (int(total) + pageSize - 1) / pageSize // The total number of pages
		respData := gin.H{
			"transactions": transactionResponses(txs), // List of transactions
			"page":         page,                      // Current page
			"page_size":    pageSize,                  // Page size
			"total":        total,                     // Total number of transactions
			"total_pages":  totalPages,                // Total pages
			"cached":       false,                     // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, adminCacheTTL)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}
