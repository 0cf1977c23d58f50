package config

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"stacksave/internal/models"
)

// GrantEvent is the message published for every faucet grant.
type GrantEvent struct {
	WalletAddress string    `json:"walletAddress"`
	Amount        int64     `json:"amount"`
	TxHash        string    `json:"txHash"`
	Timestamp     time.Time `json:"timestamp"`
}

// Publisher publishes JSON messages to durable queues.
type Publisher struct {
	mu       sync.Mutex
	channel  *amqp.Channel
	declared map[string]bool
}

func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("RabbitMQ connection not initialized")
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	return &Publisher{channel: ch, declared: make(map[string]bool)}, nil
}

// Publish declares queueName on first use and publishes message as a
// persistent JSON delivery.
func (p *Publisher) Publish(ctx context.Context, queueName string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.declared[queueName] {
		if _, err := declareQueue(p.channel, queueName); err != nil {
			return fmt.Errorf("failed to declare queue: %w", err)
		}
		p.declared[queueName] = true
	}

	err = p.channel.PublishWithContext(ctx,
		"",        // exchange
		queueName, // routing key
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		return p.channel.Close()
	}
	return nil
}

// GrantPublisher forwards faucet grants to a queue.
type GrantPublisher struct {
	publisher *Publisher
	queue     string
}

func NewGrantPublisher(p *Publisher, queue string) *GrantPublisher {
	return &GrantPublisher{publisher: p, queue: queue}
}

func (g *GrantPublisher) NotifyGrant(ctx context.Context, grant models.FaucetRequest) error {
	return g.publisher.Publish(ctx, g.queue, GrantEvent{
		WalletAddress: grant.WalletAddress,
		Amount:        grant.Amount,
		TxHash:        grant.TxHash,
		Timestamp:     grant.Timestamp,
	})
}
