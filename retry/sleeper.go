package retry

import (
	"context"
	"time"
)

// Sleeper abstracts waiting an amount of time, generalized from the
// grafana-k6 cloudapi package's sleeper/sleeperFunc pair so tests can drive
// Executor's backoff loop without a real clock. Sleep must return ctx.Err()
// promptly if ctx is canceled mid-wait (spec §5: the backoff sleep is
// cancellable, not just checked before it starts).
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a bare function to Sleeper.
type SleeperFunc func(ctx context.Context, d time.Duration) error

func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error { return f(ctx, d) }

var realSleeper Sleeper = SleeperFunc(func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
})
