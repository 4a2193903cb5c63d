package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/iliyamo/movie-catalog/internal/config"
)

type localEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

// localBuckets keeps one rate.Limiter per key.  Entries idle for longer
// than ttl are swept on the next sweep tick.
type localBuckets struct {
	mu        sync.Mutex
	m         map[string]*localEntry
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
}

func (b *localBuckets) take(key string, now time.Time) (bool, int64, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Sub(b.lastSweep) >= b.ttl {
		for k, e := range b.m {
			if now.Sub(e.seen) >= b.ttl {
				delete(b.m, k)
			}
		}
		b.lastSweep = now
	}

	e, ok := b.m[key]
	if !ok {
		e = &localEntry{lim: rate.NewLimiter(b.limit, b.burst)}
		b.m[key] = e
	}
	e.seen = now

	r := e.lim.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, 0, delay
	}
	return true, int64(e.lim.TokensAt(now)), 0
}

func newLocalBucket(cfg config.RateLimitConfig, log *slog.Logger) echo.MiddlewareFunc {
	b := &localBuckets{
		m:         map[string]*localEntry{},
		limit:     rate.Every(cfg.RefillInterval / time.Duration(max(cfg.RefillTokens, 1))),
		burst:     max(cfg.Capacity, 1),
		ttl:       max(cfg.TTL, time.Minute),
		lastSweep: time.Now(),
	}
	if cfg.RefillInterval <= 0 {
		b.limit = rate.Every(time.Second)
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			allowed, remaining, retry := b.take(key, time.Now())
			if err := limitOutcome(c, cfg, key, allowed, remaining, retry, log); err != nil {
				return err
			}
			return next(c)
		}
	}
}
