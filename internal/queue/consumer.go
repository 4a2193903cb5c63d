// Package queue contains the background consumer that listens to the
// movie.events queue and appends one line per event to a log file.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultLogPath is where consumed events are written when no path is
// given.
var DefaultLogPath = filepath.Join("logs", "movie-events.log")

// StartMovieEventConsumer connects to RabbitMQ, declares the movie.events
// queue (durable) and consumes it until ctx is cancelled.  Dial failures
// back off exponentially up to 30s; a closed delivery channel triggers a
// reconnect.  Malformed messages are rejected without requeue.
func StartMovieEventConsumer(ctx context.Context, url, logPath string, log *slog.Logger) error {
	if logPath == "" {
		logPath = DefaultLogPath
	}
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn("movie-events consumer: dial failed", "err", err, "retry_in", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, logPath, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("movie-events consumer: loop ended, reconnecting", "err", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, logPath string, log *slog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("movie-events consumer: set QoS failed", "err", err)
	}
	if _, err := ch.QueueDeclare(MovieEventsQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(MovieEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := HandleMessage(d.Body, logPath); err != nil {
				log.Error("movie-events consumer: handle message failed", "err", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// HandleMessage decodes one MovieEvent and appends it to logPath.
func HandleMessage(body []byte, logPath string) error {
	var ev MovieEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" || ev.MovieID == 0 {
		return errors.New("event without type or movie id")
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders ev as a single human-friendly line.
func FormatLine(ev MovieEvent) string {
	fields := "[]"
	if len(ev.Fields) > 0 {
		fields = "[" + strings.Join(ev.Fields, ",") + "]"
	}
	return fmt.Sprintf("[%s] %s | movie_id=%d | user_id=%d | title=%q | fields=%s\n",
		ev.OccurredAt.UTC().Format(time.RFC3339), ev.Type, ev.MovieID, ev.UserID, ev.Title, fields)
}
