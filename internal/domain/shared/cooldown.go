package shared

import (
	"context"
	"time"
)

// Cooldown is the server-imposed wall-clock delay after an action before the
// same character can act again. The expiration timestamp reported by the API
// is authoritative; RemainingSeconds is informational.
type Cooldown struct {
	RemainingSeconds float64
	Expiration       time.Time
	Reason           string
}

// Remaining returns how long the cooldown still has to run at the given time.
// Returns zero when already expired.
func (c Cooldown) Remaining(now time.Time) time.Duration {
	if c.Expiration.IsZero() {
		return 0
	}
	d := c.Expiration.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// Active reports whether the cooldown has not yet expired
func (c Cooldown) Active(now time.Time) bool {
	return c.Remaining(now) > 0
}

// Wait blocks through the clock until the cooldown expires or ctx is cancelled.
// Waiting on an already-expired cooldown returns immediately.
func (c Cooldown) Wait(ctx context.Context, clock Clock) error {
	remaining := c.Remaining(clock.Now())
	if remaining <= 0 {
		return ctx.Err()
	}
	return clock.SleepCtx(ctx, remaining)
}
