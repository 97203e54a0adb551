// Package rabbit publishes fulfillment events through RabbitMQ.
package rabbit

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/louisbranch/fulfillment/internal/platform/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	exchangeName = "fulfillment.events"
	exchangeType = "topic"
)

// Publisher sends plain-text event messages to a topic exchange. The topic
// is used as the routing key, so consumers bind per event stream
// ("payment-events", "shipping-events").
type Publisher struct {
	ch *amqp.Channel
}

// Connect dials the broker, opens a channel, and declares the fulfillment
// exchange. The caller owns the returned connection's lifetime.
func Connect(url string) (*amqp.Connection, *Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	publisher, err := New(ch)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, publisher, nil
}

// New creates a publisher over an existing channel, declaring the exchange.
func New(ch *amqp.Channel) (*Publisher, error) {
	if ch == nil {
		return nil, fmt.Errorf("amqp channel is required")
	}
	err := ch.ExchangeDeclare(
		exchangeName, // name
		exchangeType, // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{ch: ch}, nil
}

// Publish implements events.Publisher.
func (p *Publisher) Publish(ctx context.Context, topic, message string) error {
	err := p.ch.PublishWithContext(ctx,
		exchangeName,
		topic, // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "text/plain",
			Body:        []byte(message),
			Timestamp:   time.Now().UTC(),
		},
	)
	if err != nil {
		return apperrors.Wrap(apperrors.CodePublishFailure, "publish "+topic+" event", err)
	}
	return nil
}
