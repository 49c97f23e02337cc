// Package neo4rs is a client driver for a Bolt-family graph database wire
// protocol: version handshake, chunked message framing, typed value
// encoding, a bounded connection pool, lazy row streaming, explicit
// transactions, and a retrying read/write executor.
//
// Ground truth for the ambient shape (pooling over a constructor/destructor
// resource pool, tracer-driven logging, a builder-style Config) is
// github.com/jackc/pgx/v5; protocol specifics (message layout, default
// timing constants, DiscardAndCommit) follow original_source, the Rust
// driver (sumyiren/neo4rs) this module's semantics were distilled from.
package neo4rs

import (
	"context"
	"time"

	"github.com/sumyiren/neo4rs-go/pool"
	"github.com/sumyiren/neo4rs-go/retry"
	"github.com/sumyiren/neo4rs-go/tracelog"
)

// Driver owns one Config and the pool of connections built from it. Create
// one with NewDriver and call NewSession per unit of work; Close shuts the
// pool down.
type Driver struct {
	cfg      *Config
	pool     *pool.Pool[*Connection]
	executor *retry.Executor
	tracer   *tracelog.TraceLog
}

// NewDriver constructs the pool and retry executor from cfg. It does not
// validate cfg (ConfigBuilder.Build does that) and does not eagerly connect;
// the first Acquire call drives the first Connect.
func NewDriver(cfg *Config) (*Driver, error) {
	var tracer *tracelog.TraceLog
	if cfg.Logger != nil {
		tracer = &tracelog.TraceLog{Logger: cfg.Logger, Level: cfg.LogLevel}
	}

	p, err := pool.New(&pool.Config[*Connection]{
		Constructor: func(ctx context.Context) (*Connection, error) {
			return connect(ctx, cfg)
		},
		Destructor: func(c *Connection) {
			c.Close()
		},
		MaxConns: cfg.MaxConnections,
		// BeforeAcquire/AfterRelease both drive the liveness RESET (spec
		// §4.2/§4.3): AfterRelease resets a connection the instant it comes
		// back so it never sits idle in a dirty conversation state, and
		// BeforeAcquire re-checks before handing it out — covering a
		// connection whose AfterRelease RESET failed, or one destined for
		// this caller without ever having idled. Either hook returning
		// false (RESET failed) destroys the connection instead of reusing
		// it. Connection.Reset itself applies the <1s skip once the
		// connection is already idle and was recently verified.
		BeforeAcquire: func(ctx context.Context, c *Connection) bool {
			return c.Reset(ctx) == nil
		},
		AfterRelease: func(c *Connection) bool {
			return c.Reset(context.Background()) == nil
		},
		Tracer: tracer,
	})
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}

	executor := retry.NewExecutor(retry.Config{
		MaxRetryTime:           time.Duration(cfg.MaxRetryTimeMs) * time.Millisecond,
		InitialRetryDelay:      time.Duration(cfg.InitialRetryDelayMs) * time.Millisecond,
		RetryDelayMultiplier:   cfg.RetryDelayMultiplier,
		RetryDelayJitterFactor: cfg.RetryDelayJitterFactor,
		Classify:               classifyError,
	})

	return &Driver{cfg: cfg, pool: p, executor: executor, tracer: tracer}, nil
}

// Connect is a convenience wrapper: build a Config from uri/user/password
// with all other fields defaulted, then NewDriver it.
func Connect(ctx context.Context, uri, user, password string) (*Driver, error) {
	cfg, err := NewConfigBuilder().
		WithURI(uri).
		WithUser(user).
		WithPassword(password).
		Build()
	if err != nil {
		return nil, err
	}
	return NewDriver(cfg)
}

// NewSession acquires a connection from the pool and wraps it in a Session.
// The caller must Close the Session to return the connection to the pool.
func (d *Driver) NewSession(ctx context.Context, db string) (*Session, error) {
	res, err := d.pool.Acquire(ctx)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	if db == "" {
		db = d.cfg.Database
	}
	return newSession(d.pool, res, db, d.cfg.FetchSize, d.executor), nil
}

// Stat reports current pool occupancy.
func (d *Driver) Stat() *pool.Stat {
	return d.pool.Stat()
}

// Close shuts down the pool, closing every idle connection and blocking
// until outstanding ones are returned.
func (d *Driver) Close() {
	d.pool.Close()
}
