package config

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	rabbitMQMaxRetries = 10
	rabbitMQRetryDelay = 3 * time.Second
)

// URL returns the AMQP URL for cfg.
func (cfg RabbitMQConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.User, cfg.Password, cfg.Host, cfg.Port)
}

// DialRabbitMQ connects to the broker, retrying while it starts up.
func DialRabbitMQ(cfg RabbitMQConfig) (*amqp.Connection, error) {
	var err error
	for i := 0; i < rabbitMQMaxRetries; i++ {
		var conn *amqp.Connection
		conn, err = amqp.Dial(cfg.URL())
		if err == nil {
			logrus.Infof("Successfully connected to RabbitMQ at %s", cfg.Host)
			return conn, nil
		}

		if i < rabbitMQMaxRetries-1 {
			logrus.Warnf("Failed to connect to RabbitMQ (attempt %d/%d): %v. Retrying in %v...",
				i+1, rabbitMQMaxRetries, err, rabbitMQRetryDelay)
			time.Sleep(rabbitMQRetryDelay)
		}
	}

	return nil, fmt.Errorf("connect to RabbitMQ after %d attempts: %w", rabbitMQMaxRetries, err)
}

func declareQueue(ch *amqp.Channel, queueName string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	)
}
