// Package queue defines message payloads exchanged over the message broker.
package queue

import "time"

// MovieEventsQueue is the durable queue carrying MovieEvent messages.
const MovieEventsQueue = "movie.events"

// Event types.
const (
	MovieCreated = "movie.created"
	MovieUpdated = "movie.updated"
	MovieDeleted = "movie.deleted"
)

// MovieEvent is published after a movie write has been committed.  It
// carries enough information for downstream consumers to log or index the
// change without querying the primary database.
type MovieEvent struct {
	Type       string    `json:"type"`
	MovieID    uint64    `json:"movie_id"`
	UserID     uint64    `json:"user_id"`
	Title      string    `json:"title"`
	Fields     []string  `json:"fields,omitempty"` // changed fields, updates only
	OccurredAt time.Time `json:"occurred_at"`
}
