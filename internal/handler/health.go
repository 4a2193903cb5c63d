package handler // declare the package name; contains HTTP handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is a dependency the health check probes.  *sql.DB satisfies it
// directly; Redis is adapted with a closure.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// HealthHandler reports whether the service and its dependencies answer.
type HealthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler builds a health check over the named dependencies; nil
// entries are skipped.
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	h := &HealthHandler{checks: map[string]Pinger{}}
	for name, p := range checks {
		if p != nil {
			h.checks[name] = p
		}
	}
	return h
}

// Health answers 200 with {"status":"ok"} when every dependency responds
// within two seconds and 503 with the failing ones otherwise.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	failing := map[string]string{}
	for name, p := range h.checks {
		if err := p.PingContext(ctx); err != nil {
			failing[name] = err.Error()
		}
	}
	if len(failing) > 0 {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable", "checks": failing})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
