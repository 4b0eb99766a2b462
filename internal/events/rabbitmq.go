package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Exchange is the topic exchange board events are published to.
const Exchange = "board.events"

const publishTimeout = 5 * time.Second

// RabbitPublisher publishes persistent JSON messages to a topic exchange,
// routed by event type.
type RabbitPublisher struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

// NewRabbitPublisher dials url and declares the exchange.
func NewRabbitPublisher(url string) (*RabbitPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		Exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", Exchange, err)
	}

	return &RabbitPublisher{conn: conn, channel: ch}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", e.Type, err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(pubCtx, Exchange, string(e.Type), false, false,
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    e.At,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("amqp publish %s: %w", e.Type, err)
	}
	return nil
}

func (p *RabbitPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}
