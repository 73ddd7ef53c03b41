package main

import (
	"crypto_wallet/internal/config" // Custom import path (Config)
	"crypto_wallet/internal/db"     // Custom import path (Database)
	"crypto_wallet/internal/utils"  // Logger setup

	"github.com/sirupsen/logrus" // Structured logging
)

// Main entry point for migration
func main() {
	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}
	utils.SetupLogger(cfg.AppEnv, cfg.LogLevel)

	conn, err := db.Open(cfg) // Open a connection to the database
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
}
