package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-locator/internal/logger"
	"go-locator/internal/merge"
	"go-locator/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventType    = "ListingSaved"
	EventVersion = "1.0.0"

	publishTimeout = 10 * time.Second
)

var ErrClosed = errors.New("publisher: channel is closed")

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// ListingEvent is the message body published for every saved listing.
type ListingEvent struct {
	Collection string         `json:"collection"`
	Action     string         `json:"action"`
	Listing    models.Listing `json:"listing"`
	SavedAt    time.Time      `json:"saved_at"`
}

// Publisher sends saved listings to a topic exchange, routed by
// "<collection>.<action>".
type Publisher struct {
	exchange string
	conn     *amqp.Connection
	ch       channel
	log      logger.Logger
}

// Dial connects to the broker and declares the exchange.
func Dial(url, exchange string, log logger.Logger) (*Publisher, error) {
	if log == nil {
		log = logger.Nop()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("publisher: failed to dial RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("publisher: failed to open a channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("publisher: failed to declare exchange %q: %w", exchange, err)
	}

	p := newWithChannel(ch, exchange, log)
	p.conn = conn
	p.log.Info("🐇 Connected to broker", logger.Fields{"exchange": exchange})
	return p, nil
}

func newWithChannel(ch channel, exchange string, log logger.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{
		exchange: exchange,
		ch:       ch,
		log:      log.WithFields(logger.Fields{"component": "publisher"}),
	}
}

// RoutingKey is the topic a listing event is published under.
func RoutingKey(collection string, action merge.Action) string {
	return collection + "." + action.String()
}

// Publish sends one listing event. Skipped writes are not published.
func (p *Publisher) Publish(ctx context.Context, collection string, action merge.Action, l models.Listing) error {
	if action == merge.Skip {
		return nil
	}
	if p.ch == nil {
		return ErrClosed
	}

	body, err := json.Marshal(ListingEvent{
		Collection: collection,
		Action:     action.String(),
		Listing:    l,
		SavedAt:    l.ScrapedAt,
	})
	if err != nil {
		return fmt.Errorf("publisher: failed to marshal listing: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers: amqp.Table{
			"event-type":    EventType,
			"event-version": EventVersion,
		},
	}
	if traceID, ok := logger.TraceIDFromContext(ctx); ok {
		msg.Headers["x-trace-id"] = traceID
	}

	key := RoutingKey(collection, action)
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.ch.PublishWithContext(pubCtx, p.exchange, key, false, false, msg); err != nil {
		return fmt.Errorf("publisher: failed to publish %s: %w", key, err)
	}
	p.log.Debug("Listing event published", logger.Fields{"routing_key": key, "link": l.Link})
	return nil
}

func (p *Publisher) Close() error {
	var firstErr error
	if p.ch != nil {
		if err := p.ch.Close(); err != nil {
			firstErr = err
		}
		p.ch = nil
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		p.conn = nil
	}
	return firstErr
}
