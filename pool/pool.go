// Package pool implements a bounded pool of connections over
// github.com/jackc/puddle/v2, generalized from the constructor/destructor
// puddle.Pool wrapping the teacher repo's own pool package (pool/pool.go,
// pool/conn.go in an earlier jackc/pgx) does for *pgx.Conn, with the
// liveness-on-release and FAILED-eviction rules spec'd for this driver's
// Connection state machine.
package pool

import (
	"context"
	"time"

	"github.com/jackc/puddle/v2"

	"github.com/sumyiren/neo4rs-go/tracelog"
)

// PooledConn is the subset of Connection the pool needs to enforce its
// liveness and reset rules without importing the root package (which in turn
// depends on pool).
type PooledConn interface {
	IsAlive() bool
	IsFailed() bool
	Reset(ctx context.Context) error
}

// resetGrace is the length of the liveness-skip window (spec §5: avoid a
// round-trip RESET for a connection that was just verified healthy). The pool
// does not consult it; Connection.Reset applies its own one-second window,
// measured from the connection's last successful RESET or connect.
const resetGrace = 1 * time.Second

// Config configures a Pool. Constructor and Destructor are required;
// BeforeAcquire/AfterRelease are optional hooks mirroring the teacher pool's
// Config.BeforeAcquire/AfterRelease.
type Config[T PooledConn] struct {
	Constructor func(ctx context.Context) (T, error)
	Destructor  func(T)
	MaxConns    int32

	// BeforeAcquire is called after a connection is taken off the idle list
	// but before Acquire returns it, with the caller's Acquire ctx so it can
	// run a liveness RESET (or anything else needing cancellation) before the
	// connection is handed out. Returning false destroys the connection and
	// the pool tries again.
	BeforeAcquire func(ctx context.Context, conn T) bool

	// AfterRelease is called before a released connection is returned to the
	// idle list. Returning false destroys the connection instead.
	AfterRelease func(T) bool

	Tracer *tracelog.TraceLog
}

// Pool is a bounded, FIFO-fair pool of connections of type T.
type Pool[T PooledConn] struct {
	p             *puddle.Pool[T]
	beforeAcquire func(context.Context, T) bool
	afterRelease  func(T) bool
	tracer        *tracelog.TraceLog
}

// New constructs a Pool but does not eagerly connect; the first Acquire call
// drives the first Constructor invocation.
func New[T PooledConn](cfg *Config[T]) (*Pool[T], error) {
	p, err := puddle.NewPool(&puddle.Config[T]{
		Constructor: func(ctx context.Context) (T, error) { return cfg.Constructor(ctx) },
		Destructor:  cfg.Destructor,
		MaxSize:     cfg.MaxConns,
	})
	if err != nil {
		return nil, err
	}

	return &Pool[T]{
		p:             p,
		beforeAcquire: cfg.BeforeAcquire,
		afterRelease:  cfg.AfterRelease,
		tracer:        cfg.Tracer,
	}, nil
}

// Close closes all idle connections and rejects future Acquire calls. It
// blocks until every outstanding connection has been released or destroyed.
func (p *Pool[T]) Close() {
	p.p.Close()
}

// Acquire waits (FIFO, per puddle's internal wait queue) for an available
// connection, skips any connection BeforeAcquire rejects, and returns it.
// ctx cancellation aborts the wait.
func (p *Pool[T]) Acquire(ctx context.Context) (*Resource[T], error) {
	if p.tracer != nil {
		ctx = p.tracer.TraceAcquireStart(ctx)
	}

	for {
		res, err := p.p.Acquire(ctx)
		if err != nil {
			if p.tracer != nil {
				p.tracer.TraceAcquireEnd(ctx, err)
			}
			return nil, err
		}

		conn := res.Value()
		if conn.IsFailed() {
			res.Destroy()
			continue
		}

		if p.beforeAcquire == nil || p.beforeAcquire(ctx, conn) {
			if p.tracer != nil {
				p.tracer.TraceAcquireEnd(ctx, nil)
			}
			return &Resource[T]{res: res, pool: p}, nil
		}

		res.Destroy()
	}
}

// AcquireAllIdle atomically takes every currently idle connection, for health
// checks; it does not go through BeforeAcquire/tracing.
func (p *Pool[T]) AcquireAllIdle() []*Resource[T] {
	resources := p.p.AcquireAllIdle()
	out := make([]*Resource[T], 0, len(resources))
	for _, res := range resources {
		out = append(out, &Resource[T]{res: res, pool: p})
	}
	return out
}

func (p *Pool[T]) Stat() *Stat {
	return &Stat{s: p.p.Stat()}
}

// Resource wraps one acquired connection, tracking whether it has been
// released so Release is safely idempotent.
type Resource[T PooledConn] struct {
	res      *puddle.Resource[T]
	pool     *Pool[T]
	released bool
}

func (r *Resource[T]) Value() T { return r.res.Value() }

// Release returns the connection to the pool, unless it is no longer alive,
// AfterRelease rejects it, or it has gone FAILED — in which cases it is
// destroyed instead. A connection released less than resetGrace after a
// previous liveness check skips the RESET round-trip (spec §5 liveness
// optimization); Connection.Reset itself is responsible for that skip since
// it alone knows its last-verified time.
func (r *Resource[T]) Release() {
	if r.released {
		return
	}
	r.released = true

	conn := r.res.Value()
	var relErr error

	if conn.IsFailed() || !conn.IsAlive() {
		relErr = errPooledConnUnusable
	} else if r.pool.afterRelease != nil && !r.pool.afterRelease(conn) {
		relErr = errAfterReleaseRejected
	}

	if r.pool.tracer != nil {
		r.pool.tracer.TraceRelease(context.Background(), relErr)
	}

	if relErr != nil {
		r.res.Destroy()
		return
	}
	r.res.Release()
}

// Destroy forcibly discards the connection instead of returning it.
func (r *Resource[T]) Destroy() {
	if r.released {
		return
	}
	r.released = true
	r.res.Destroy()
}

// IdleDuration reports how long this resource sat idle before this acquire.
func (r *Resource[T]) IdleDuration() time.Duration {
	return r.res.IdleDuration()
}
