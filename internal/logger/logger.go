// Package logger configures the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// New builds a logger writing to w.  Development and debug runs get a
// human-readable text handler at debug level; every other environment gets
// JSON at info level.
func New(w io.Writer, env string, debug bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if debug || env == "development" || env == "local" {
		opts.Level = slog.LevelDebug
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// Init installs a stdout logger as the slog default and returns it.
func Init(env string, debug bool) *slog.Logger {
	l := New(os.Stdout, env, debug)
	slog.SetDefault(l)
	return l
}

// Discard is a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
