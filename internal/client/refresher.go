package client

import (
	"context"
	"time"
)

// DefaultRefreshInterval is how often RunRefresher checks the token.
const DefaultRefreshInterval = 5 * time.Minute

// RunRefresher checks the session every interval and refreshes the token
// when it expires within two intervals, so a token is never allowed to
// lapse between two checks.  Refresh failures are logged; a rejected token
// clears the session and the loop keeps running until ctx is done.
func (c *Client) RunRefresher(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			c.refreshIfDue(ctx, interval)
		}
	}
}

func (c *Client) refreshIfDue(ctx context.Context, interval time.Duration) {
	s := c.Session()
	now := c.now()
	if !s.Valid(now) || !s.ExpiresWithin(2*interval, now) {
		return
	}
	if err := c.Refresh(ctx); err != nil {
		c.log.Warn("token refresh failed", "err", err)
		return
	}
	c.log.Debug("token refreshed", "expires_at", c.Session().ExpiresAt)
}
