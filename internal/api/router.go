package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-contrib/cors"  // CORS middleware
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client

	"crypto_wallet/internal/auth"       // Identity
	"crypto_wallet/internal/ledger"     // Balances and transactions
	"crypto_wallet/internal/middleware" // JWT, admin and request middleware
	"crypto_wallet/internal/pricecache" // Price snapshots
	"crypto_wallet/internal/store"      // Persistence
)

// Deps are the collaborators the HTTP layer is built from
type Deps struct {
	Store       *store.Store
	Auth        *auth.Service
	Ledger      *ledger.Service
	Prices      *pricecache.Cache
	Redis       redis.Cmdable
	JWTSecret   string
	FrontendURL string
	CORSOrigins []string // Empty allows any origin
}

// NewRouter builds the gin engine with every route
func NewRouter(d Deps) *gin.Engine {
	InitValidation() // JSON field names in validation errors

	r := gin.New()                                                      // Gin router instance
	r.Use(middleware.RequestIDMiddleware(), middleware.RequestLogger()) // Request id and access log
	r.Use(gin.Recovery())                                               // Recover from panics
	r.Use(corsMiddleware(d.CORSOrigins))                                // Browser access

	// Banner
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Tailux Crypto API is live and connected",
			"docs":    "/api/wallets/total",
		})
	})

	requireAuth := middleware.JWTAuthMiddleware(d.JWTSecret) // Bearer session token
	api := r.Group("/api")

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.POST("/register", RegisterHandler(d.Auth, d.Redis))              // Registration endpoint
	authGroup.POST("/login", LoginHandler(d.Auth))                             // Login endpoint
	authGroup.GET("/verify/:token", VerifyEmailHandler(d.Auth, d.FrontendURL)) // Email verification link
	authGroup.GET("/me", requireAuth, ProfileHandler(d.Auth))                  // Profile with wallets

	// Wallet routes (protected by JWT)
	walletGroup := api.Group("/wallets", requireAuth)
	walletGroup.GET("", ListWalletsHandler(d.Ledger))                           // All wallets of the caller
	walletGroup.POST("/init", InitWalletsHandler(d.Auth, d.Ledger))             // Find-or-create BTC/ETH
	walletGroup.PUT("/update-prices", UpdatePricesHandler(d.Ledger, d.Redis))   // Refresh USD balances
	walletGroup.GET("/total", TotalHandler(d.Ledger, d.Redis))                  // Per-coin and USD total
	walletGroup.PUT("/update", UpdateBalanceHandler(d.Auth, d.Ledger, d.Redis)) // Deposit or withdraw

	// Transaction routes (protected by JWT)
	txGroup := api.Group("/transactions", requireAuth)
	txGroup.GET("", ListTransactionsHandler(d.Ledger))                     // Ledger of the caller
	txGroup.POST("/create", CreateTransactionsHandler(d.Ledger, d.Redis))  // Record one or many
	txGroup.GET("/by-wallet/:coin", TransactionsByWalletHandler(d.Ledger)) // Ledger of one coin

	// Crypto price routes (protected by JWT)
	api.GET("/crypto/prices", requireAuth, PricesHandler(d.Prices)) // Cached price snapshot

	// Admin routes (protected, admin only)
	adminGroup := api.Group("/admin", requireAuth, middleware.AdminOnlyMiddleware(d.Store))
	adminGroup.GET("/users", ListUsersHandler(d.Store, d.Redis))                  // List users endpoint
	adminGroup.GET("/transactions", ListAllTransactionsHandler(d.Store, d.Redis)) // List transactions endpoint

	return r
}

// corsMiddleware allows the configured origins, or any origin when none are configured
func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", middleware.HeaderRequestID)
	cfg.ExposeHeaders = []string{middleware.HeaderRequestID}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
