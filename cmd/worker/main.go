package main

import (
	"context"
	"encoding/json"
	"errors"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"stacksave/pkg/config"
)

// handleGrant writes an audit line for one faucet grant event. Malformed
// messages are logged and dropped so they are not redelivered forever.
func handleGrant(msg []byte) error {
	var event config.GrantEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		logrus.Errorf("Failed to unmarshal grant event: %v", err)
		return nil
	}

	logrus.WithFields(logrus.Fields{
		"wallet":    event.WalletAddress,
		"amount":    event.Amount,
		"tx_hash":   event.TxHash,
		"timestamp": event.Timestamp,
	}).Info("Faucet grant issued")
	return nil
}

func main() {
	cfg := config.Load()
	config.InitLogger(cfg)

	if !cfg.RabbitMQ.Enabled() {
		logrus.Fatal("RABBITMQ_HOST is required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := config.DialRabbitMQ(cfg.RabbitMQ)
	if err != nil {
		logrus.Fatalf("Failed to initialize RabbitMQ: %v", err)
	}
	defer conn.Close()

	consumer, err := config.NewConsumer(conn, cfg.FaucetQueue)
	if err != nil {
		logrus.Fatalf("Failed to create consumer: %v", err)
	}
	defer consumer.Close()

	logrus.Info("Faucet grant worker started, waiting for messages...")

	if err := consumer.Consume(ctx, handleGrant); err != nil && !errors.Is(err, context.Canceled) {
		logrus.Fatalf("Consumer stopped: %v", err)
	}
	logrus.Info("Faucet grant worker stopped")
}
