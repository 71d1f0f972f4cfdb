package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"mixmodas/internal/models"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// CatalogQueue receives one message per product change.
const CatalogQueue = "catalog_events"

// Event types published on CatalogQueue.
const (
	EventProductSaved   = "produto.salvo"
	EventProductRemoved = "produto.removido"
)

// CatalogEvent is the JSON body of a catalog message.
type CatalogEvent struct {
	Type      string          `json:"type"`
	ProductID string          `json:"produto_id"`
	Product   *models.Product `json:"produto,omitempty"`
	At        time.Time       `json:"at"`
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex // serializes publishes from mirror workers
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares CatalogQueue.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := declareCatalogQueue(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	zap.L().Info("RabbitMQ client connected", zap.String("queue", CatalogQueue))

	return &Client{
		conn:    conn,
		channel: ch,
	}, nil
}

func declareCatalogQueue(ch *amqp.Channel) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		CatalogQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return q, fmt.Errorf("failed to declare %s: %w", CatalogQueue, err)
	}
	return q, nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// Connected reports whether the underlying connection is still open.
func (c *Client) Connected() bool {
	return c.conn != nil && !c.conn.IsClosed()
}

// Publish sends a persistent JSON message to the default exchange.
func (c *Client) Publish(routingKey string, body []byte) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.channel.Publish(
		"",         // default exchange
		routingKey, // queue name
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// PublishCatalogEvent marshals and publishes event on CatalogQueue.
func (c *Client) PublishCatalogEvent(event CatalogEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog event: %w", err)
	}
	return c.Publish(CatalogQueue, body)
}

// PutProduct publishes a produto.salvo event. It lets the client act as a
// product mirror target.
func (c *Client) PutProduct(_ context.Context, product *models.Product) error {
	return c.PublishCatalogEvent(CatalogEvent{
		Type:      EventProductSaved,
		ProductID: product.ID,
		Product:   product,
		At:        time.Now(),
	})
}

// RemoveProduct publishes a produto.removido event.
func (c *Client) RemoveProduct(_ context.Context, id string) error {
	return c.PublishCatalogEvent(CatalogEvent{
		Type:      EventProductRemoved,
		ProductID: id,
		At:        time.Now(),
	})
}

// ConsumeCatalogEvents delivers decoded events to handler until ctx is done.
// A handler error nacks the message without requeue so a poison message does
// not loop forever.
func (c *Client) ConsumeCatalogEvents(ctx context.Context, handler func(CatalogEvent) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	queue, err := declareCatalogQueue(c.channel)
	if err != nil {
		return err
	}

	msgs, err := c.channel.Consume(
		queue.Name,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			var event CatalogEvent
			if err := json.Unmarshal(msg.Body, &event); err != nil {
				zap.L().Warn("discarding malformed catalog event", zap.Uint64("tag", msg.DeliveryTag), zap.Error(err))
				_ = msg.Nack(false, false)
				continue
			}
			if err := handler(event); err != nil {
				zap.L().Warn("catalog event handler failed", zap.Uint64("tag", msg.DeliveryTag), zap.Error(err))
				_ = msg.Nack(false, false)
				continue
			}
			if err := msg.Ack(false); err != nil {
				zap.L().Warn("failed to ack catalog event", zap.Uint64("tag", msg.DeliveryTag), zap.Error(err))
			}
		}
	}
}
