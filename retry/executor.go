// Package retry implements the backoff-with-jitter retry loop that drives
// Session.ExecuteRead/ExecuteWrite, grounded on
// original_source/lib/src/internal/transaction_executor.rs's
// TransactionExecutor (run_transaction / execute_work / retry_transaction /
// compute_delay_with_jitter), and on the grafana-k6 cloudapi package's
// sleeper abstraction for the wait step.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// maxDelay mirrors the Rust original's MAX_RETRY_DELAY = i64::MAX / 2: the
// cap applied to the exponential backoff before jitter, so a high attempt
// count or multiplier can never overflow the delay computation.
const maxDelay = time.Duration(math.MaxInt64 / 2)

// Classifier reports whether err should be retried. The executor has no
// opinion of its own about what is retriable — the caller supplies a table
// (spec §9 Open Question (a): retriable codes are injectable, with driver
// defaults covering the well-known transient Neo4j error classes).
type Classifier func(err error) bool

// Config parameterizes one Executor. Rates mirror
// original_source/lib/src/config.rs's ConfigBuilder fields.
type Config struct {
	MaxRetryTime           time.Duration
	InitialRetryDelay      time.Duration
	RetryDelayMultiplier   float64
	RetryDelayJitterFactor float64
	Classify               Classifier
	Sleeper                Sleeper
	Rand                   *rand.Rand
}

// Executor retries a unit of work until it succeeds, returns a
// non-retriable error, or the wall-clock deadline elapses.
type Executor struct {
	cfg Config
}

// NewExecutor fills in defaults and returns an Executor; it does not validate
// cfg. A nil Sleeper defaults to a timer-based sleep that returns early when
// ctx is done; a nil Rand defaults to a time-seeded source; a nil Classify
// treats every error as non-retriable.
func NewExecutor(cfg Config) *Executor {
	if cfg.Sleeper == nil {
		cfg.Sleeper = realSleeper
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Classify == nil {
		cfg.Classify = func(error) bool { return false }
	}
	return &Executor{cfg: cfg}
}

// Work is one attempt at the retried unit. Run invokes rollback (best-effort;
// its error is ignored) after every failure that Classify approves, before it
// checks the deadline, so a caller's half-open transaction never leaks into
// the retry. A non-retriable failure is returned without calling rollback.
type Work func(ctx context.Context) error

// Run attempts work, retrying on a Classify-approved error until it
// succeeds, a non-retriable error occurs, or elapsed wall-clock time exceeds
// MaxRetryTime. Deadline is measured from the first attempt, not from
// ctx.Deadline(), matching the Rust original's use of a plain start Instant.
func (e *Executor) Run(ctx context.Context, work Work, rollback func(ctx context.Context) error) error {
	start := time.Now()
	delay := e.cfg.InitialRetryDelay

	for attempt := 0; ; attempt++ {
		err := work(ctx)
		if err == nil {
			return nil
		}

		if !e.cfg.Classify(err) {
			return err
		}

		if rollback != nil {
			_ = rollback(ctx)
		}

		if time.Since(start) >= e.cfg.MaxRetryTime {
			return err
		}

		wait := e.jitter(delay)
		if err := e.cfg.Sleeper.Sleep(ctx, wait); err != nil {
			return err
		}

		delay = e.nextDelay(delay)
	}
}

// nextDelay scales delay by RetryDelayMultiplier, capped at maxDelay.
func (e *Executor) nextDelay(delay time.Duration) time.Duration {
	next := time.Duration(float64(delay) * e.cfg.RetryDelayMultiplier)
	if next > maxDelay || next < 0 {
		return maxDelay
	}
	return next
}

// jitter draws uniformly from [delay*(1-j), delay*(1+j)), matching
// compute_delay_with_jitter in the Rust original.
func (e *Executor) jitter(delay time.Duration) time.Duration {
	j := e.cfg.RetryDelayJitterFactor
	if j <= 0 {
		return delay
	}

	lower := float64(delay) * (1 - j)
	upper := float64(delay) * (1 + j)
	span := upper - lower
	if span <= 0 {
		return delay
	}

	return time.Duration(lower + e.cfg.Rand.Float64()*span)
}
