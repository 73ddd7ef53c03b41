package main

import (
	"context"   // Context for shutdown
	"os"        // OS signals
	"os/signal" // Signal notification
	"syscall"   // SIGTERM

	amqp "github.com/rabbitmq/amqp091-go" // RabbitMQ client
	"github.com/sirupsen/logrus"          // Structured logging

	"crypto_wallet/internal/config" // Configuration
	"crypto_wallet/internal/mailer" // Email delivery
	"crypto_wallet/internal/utils"  // Logger setup
)

// Mail worker: consumes queued verification emails and delivers them through Mailgun
func main() {
	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	utils.SetupLogger(cfg.AppEnv, cfg.LogLevel) // Setup logger

	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logrus.Fatal("Mailgun not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL) // Connect to RabbitMQ
	if err != nil {
		logrus.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel() // Open a channel
	if err != nil {
		logrus.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	// Prefetch for fair dispatch between workers
	if err := ch.Qos(16, 0, false); err != nil {
		logrus.Fatalf("qos: %v", err)
	}
	if err := mailer.DeclareQueue(ch, cfg.RabbitMQEmailQueue); err != nil {
		logrus.Fatalf("queue declare: %v", err)
	}
	deliveries, err := ch.Consume(cfg.RabbitMQEmailQueue, "", false, false, false, false, nil)
	if err != nil {
		logrus.Fatalf("consume: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM) // Stop on SIGINT/SIGTERM
	defer stop()

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	logrus.WithField("queue", cfg.RabbitMQEmailQueue).Info("Mail worker listening")
	mailer.Consume(ctx, deliveries, mg) // Blocks until shutdown or channel close
	logrus.Info("Mail worker stopped")
}
