// Package events publishes domain events to the message broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"properly/internal/config"
	"properly/internal/model"
)

const publishTimeout = 5 * time.Second

// Publisher announces captured leads to downstream consumers
type Publisher interface {
	PublishLead(ctx context.Context, evt model.LeadEvent) error
	Close() error
}

// amqpChannel is the part of *amqp.Channel the publisher needs
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitPublisher publishes lead events as JSON to a durable topic exchange
type RabbitPublisher struct {
	conn       *amqp.Connection
	mu         sync.Mutex
	channel    amqpChannel
	exchange   string
	routingKey string
	logger     *slog.Logger
}

// NewRabbitPublisher dials the broker and declares the leads exchange
func NewRabbitPublisher(cfg config.RabbitMQConfig, logger *slog.Logger) (*RabbitPublisher, error) {
	if cfg.LeadsExchange == "" || cfg.LeadsRoutingKey == "" {
		return nil, fmt.Errorf("rabbitmq: exchange and routing key are required")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: failed to dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: failed to open a channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.LeadsExchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: failed to declare exchange '%s': %w", cfg.LeadsExchange, err)
	}

	logger.Debug("leads exchange declared", "exchange", cfg.LeadsExchange)

	return &RabbitPublisher{
		conn:       conn,
		channel:    ch,
		exchange:   cfg.LeadsExchange,
		routingKey: cfg.LeadsRoutingKey,
		logger:     logger,
	}, nil
}

// PublishLead publishes one lead event
func (p *RabbitPublisher) PublishLead(ctx context.Context, evt model.LeadEvent) error {
	msg, err := leadMessage(evt)
	if err != nil {
		return err
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel == nil {
		return fmt.Errorf("rabbitmq: publisher is closed")
	}

	err = p.channel.PublishWithContext(publishCtx, p.exchange, p.routingKey, false, false, msg)
	if err != nil {
		return fmt.Errorf("rabbitmq: failed to publish lead %s: %w", evt.SessionID, err)
	}

	p.logger.Debug("lead published", "session_id", evt.SessionID, "routing_key", p.routingKey)
	return nil
}

// Close closes the channel and the connection
func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	if p.channel != nil {
		firstErr = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		p.conn = nil
	}
	return firstErr
}

func leadMessage(evt model.LeadEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(evt)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal lead event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    evt.SessionID,
		Timestamp:    evt.CapturedAt,
		Type:         "lead.captured",
		Body:         body,
	}, nil
}

// NoopPublisher drops events. Used when no broker is configured.
type NoopPublisher struct{}

// PublishLead does nothing
func (NoopPublisher) PublishLead(context.Context, model.LeadEvent) error { return nil }

// Close does nothing
func (NoopPublisher) Close() error { return nil }
