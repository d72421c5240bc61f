// Package events carries transaction.created notifications over AMQP.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"walletwhiz/internal/config"
	"walletwhiz/internal/dto"
	"walletwhiz/internal/models"
	"walletwhiz/internal/services"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Channel is the part of *amqp091.Channel the client uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp091.Table) (<-chan amqp091.Delivery, error)
	Close() error
}

var _ services.TransactionEventPublisher = (*Client)(nil)

type Client struct {
	conn     *amqp091.Connection
	channel  Channel
	exchange string
	queue    string
	logger   *slog.Logger
	now      func() time.Time
}

// Dial connects and declares a durable direct exchange with the queue bound
// under its own name.
func Dial(cfg config.AMQPConfig, logger *slog.Logger) (*Client, error) {
	conn, err := amqp091.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client, err := NewClient(channel, cfg, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	client.conn = conn
	return client, nil
}

func NewClient(channel Channel, cfg config.AMQPConfig, logger *slog.Logger) (*Client, error) {
	c := &Client{
		channel:  channel,
		exchange: cfg.Exchange,
		queue:    cfg.Queue,
		logger:   logger,
		now:      time.Now,
	}
	if err := c.setup(); err != nil {
		channel.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	return c, nil
}

func (c *Client) setup() error {
	if err := c.channel.ExchangeDeclare(c.exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := c.channel.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := c.channel.QueueBind(c.queue, c.queue, c.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// PublishTransactionCreated sends a persistent JSON event for t.
func (c *Client) PublishTransactionCreated(ctx context.Context, t *models.Transaction) error {
	event := NewTransactionCreatedEvent(t, c.now())
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(ctx, c.exchange, c.queue, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    event.EventID.String(),
		Timestamp:    event.OccurredAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	c.logger.DebugContext(ctx, "transaction event published",
		slog.String("event_id", event.EventID.String()),
		slog.String("transaction_id", t.ID.String()))
	return nil
}

func NewTransactionCreatedEvent(t *models.Transaction, now time.Time) dto.TransactionCreatedEvent {
	event := dto.TransactionCreatedEvent{
		EventID:         uuid.New(),
		UserID:          t.UserID,
		TransactionID:   t.ID,
		Type:            t.Type,
		Amount:          t.Amount.StringFixed(2),
		TransactionDate: t.TransactionDate,
		OccurredAt:      now.UTC(),
	}
	if t.Category != nil {
		event.Category = t.Category.Name
	}
	return event
}

// EventHandler processes one decoded event. A returned error requeues it.
type EventHandler func(ctx context.Context, event *dto.TransactionCreatedEvent) error

// Consume delivers events to handler with manual acknowledgement until ctx
// is cancelled or the broker closes the channel. Undecodable messages are
// dropped.
func (c *Client) Consume(ctx context.Context, handler EventHandler) error {
	deliveries, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}
	c.logger.InfoContext(ctx, "consuming transaction events", slog.String("queue", c.queue))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			c.handle(ctx, delivery, handler)
		}
	}
}

func (c *Client) handle(ctx context.Context, delivery amqp091.Delivery, handler EventHandler) {
	var event dto.TransactionCreatedEvent
	if err := json.Unmarshal(delivery.Body, &event); err != nil {
		c.logger.ErrorContext(ctx, "failed to decode event", slog.Any("error", err))
		_ = delivery.Nack(false, false)
		return
	}

	if err := handler(ctx, &event); err != nil {
		c.logger.ErrorContext(ctx, "failed to handle event",
			slog.Any("error", err),
			slog.String("event_id", event.EventID.String()))
		// A redelivered message that fails again is dropped to avoid a hot loop.
		_ = delivery.Nack(false, !delivery.Redelivered)
		return
	}
	_ = delivery.Ack(false)
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
