package main

import (
	"context"   // context package is needed for Redis operations and shutdown
	"errors"    // Error matching
	"net/http"  // HTTP server
	"os"        // OS signals
	"os/signal" // Signal notification
	"syscall"   // SIGTERM
	"time"      // Shutdown timeout

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"golang.org/x/sync/errgroup"   // Server lifecycle

	"crypto_wallet/internal/api"        // API handlers and router
	"crypto_wallet/internal/auth"       // Identity service
	"crypto_wallet/internal/config"     // Configuration
	"crypto_wallet/internal/db"         // Database bootstrap
	"crypto_wallet/internal/ledger"     // Balance mutator
	"crypto_wallet/internal/mailer"     // Email delivery
	"crypto_wallet/internal/pricecache" // Price cache
	"crypto_wallet/internal/pricefeed"  // CoinGecko client
	"crypto_wallet/internal/store"      // Persistence
	"crypto_wallet/internal/utils"      // Logger setup
)

// Main function to set up and run the server
func main() {
	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	utils.SetupLogger(cfg.AppEnv, cfg.LogLevel) // Setup logger

	conn, err := db.Open(cfg) // Connect to the database
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})
	defer func() { _ = redisClient.Close() }()

	// Test Redis connection
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Select how verification emails leave the process
	var sender mailer.Sender
	switch cfg.MailDelivery {
	case config.MailDirect:
		sender = mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender) // Failures fail registration
	case config.MailQueue:
		queue, err := mailer.NewQueue(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logrus.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer queue.Close()
		sender = mailer.BestEffort(queue) // Failures are only logged
	default:
		sender = mailer.LogSender{} // Delivery disabled
	}

	st := store.New(conn)                                         // Persistence
	feed := pricefeed.New(cfg.PriceFeedURL, cfg.PriceFeedTimeout) // CoinGecko client
	prices := pricecache.New(                                     // One price cache per process
		pricecache.NewRedisStore(redisClient, cfg.PriceCacheRetention),
		feed,
		cfg.PriceCacheTTL,
	)
	authSvc, err := auth.New(st, sender, auth.Options{
		Secret:      cfg.JWTSecret,   // Token signing key
		TokenTTL:    cfg.JWTTTL,      // Session and verification lifetime
		FrontendURL: cfg.FrontendURL, // Verification links
		BcryptCost:  cfg.BcryptCost,  // Password hashing cost
	})
	if err != nil {
		logrus.Fatalf("failed to init auth: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r := api.NewRouter(api.Deps{
		Store:       st,
		Auth:        authSvc,
		Ledger:      ledger.New(st, feed),
		Prices:      prices,
		Redis:       redisClient,
		JWTSecret:   cfg.JWTSecret,
		FrontendURL: cfg.FrontendURL,
		CORSOrigins: cfg.CORSOrigins(),
	})
	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.WithField("port", cfg.AppPort).Info("Server running") // Log server start
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done() // Signal or server failure
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logrus.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logrus.Fatalf("server error: %v", err)
	}
}
