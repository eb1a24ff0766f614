package history

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
)

// DelayFunc blocks for d, or until ctx is done in which case ctx.Err() is returned.
type DelayFunc func(ctx context.Context, d time.Duration) error

// NewClockDelay returns a DelayFunc that waits on clk.
func NewClockDelay(clk clock.Clock) DelayFunc {
	return func(ctx context.Context, d time.Duration) error {
		if d <= 0 {
			return ctx.Err()
		}
		timer := clk.Timer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
