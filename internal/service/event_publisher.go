// Package service provides adapters that push domain events out of the
// process.  Errors are logged and returned so callers can ignore failures
// without interrupting the main request flow.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/movie-catalog/internal/queue"
)

// ErrBrokerUnavailable is returned without touching the network while a
// dial is in flight or a failed dial is still inside its back-off window.
var ErrBrokerUnavailable = errors.New("rabbitmq: broker unavailable")

// DefaultRedialAfter is how long the publisher waits after a failed dial
// before trying again.
const DefaultRedialAfter = 15 * time.Second

// AMQPPublisher publishes MovieEvents to the movie.events queue.  The
// connection is dialled lazily and re-dialled after the broker drops it.
// Only one dial runs at a time and it runs outside the mutex, so writers
// never queue up behind an unreachable broker.
type AMQPPublisher struct {
	url         string
	log         *slog.Logger
	redialAfter time.Duration
	dial        func(url string) (*amqp.Connection, error)
	now         func() time.Time

	mu      sync.Mutex
	conn    *amqp.Connection
	dialing bool
	retryAt time.Time
	closed  bool
}

func NewAMQPPublisher(url string, log *slog.Logger) *AMQPPublisher {
	return &AMQPPublisher{
		url:         url,
		log:         log,
		redialAfter: DefaultRedialAfter,
		dial: func(url string) (*amqp.Connection, error) {
			return amqp.DialConfig(url, amqp.Config{Dial: amqp.DefaultDial(3 * time.Second)})
		},
		now: time.Now,
	}
}

func (p *AMQPPublisher) connection() (*amqp.Connection, error) {
	p.mu.Lock()
	if p.conn != nil && !p.conn.IsClosed() {
		conn := p.conn
		p.mu.Unlock()
		return conn, nil
	}
	if p.closed || p.dialing || p.now().Before(p.retryAt) {
		p.mu.Unlock()
		return nil, ErrBrokerUnavailable
	}
	p.dialing = true
	p.mu.Unlock()

	conn, err := p.dial(p.url)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.dialing = false
	if err != nil {
		p.retryAt = p.now().Add(p.redialAfter)
		return nil, err
	}
	if p.closed {
		_ = conn.Close()
		return nil, ErrBrokerUnavailable
	}
	p.retryAt = time.Time{}
	p.conn = conn
	return conn, nil
}

// PublishMovieEvent sends ev as a persistent JSON message.
func (p *AMQPPublisher) PublishMovieEvent(ctx context.Context, ev queue.MovieEvent) error {
	conn, err := p.connection()
	if err != nil {
		if !errors.Is(err, ErrBrokerUnavailable) {
			p.log.Warn("rabbitmq: dial failed", "err", err, "retry_in", p.redialAfter)
		}
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("rabbitmq: channel open failed", "err", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// durable queue, persistent messages
	if _, err := ch.QueueDeclare(queue.MovieEventsQueue, true, false, false, false, nil); err != nil {
		p.log.Warn("rabbitmq: queue declare failed", "err", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.MovieEventsQueue, false, false, pub); err != nil {
		p.log.Warn("rabbitmq: publish failed", "err", err, "event", ev.Type)
		return err
	}
	return nil
}

// Close releases the broker connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}

// NoopPublisher drops every event.  It is used when events are disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishMovieEvent(context.Context, queue.MovieEvent) error { return nil }
