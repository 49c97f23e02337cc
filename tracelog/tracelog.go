// Package tracelog adapts log.Logger into trace hooks for this driver's
// RUN/PULL/DISCARD, BEGIN/COMMIT/ROLLBACK, and pool acquire/release
// operations, the same shape as jackc/pgx/v5's tracelog package generalized
// from SQL query tracing. Within this module only pool.Pool calls hooks
// (TraceAcquireStart/End and TraceRelease); Connection calls none of the
// Run/Pull/Discard/Tx hooks.
package tracelog

import (
	"context"
	"sync"
	"time"

	"github.com/sumyiren/neo4rs-go/log"
)

// TraceLogConfig holds the configuration for key names. TimeKey names the
// duration field of the Run log line only; the other trace methods always
// use "time".
type TraceLogConfig struct {
	TimeKey string
}

func DefaultTraceLogConfig() *TraceLogConfig {
	return &TraceLogConfig{TimeKey: "time"}
}

// TraceLog provides the Run, Pull, Discard, Tx, Acquire and Release trace
// hooks in terms of a single log.Logger. Logger and Level are required;
// Config is lazily defaulted.
type TraceLog struct {
	Logger log.Logger
	Level  log.Level

	Config           *TraceLogConfig
	ensureConfigOnce sync.Once
}

func (tl *TraceLog) ensureConfig() {
	tl.ensureConfigOnce.Do(func() {
		if tl.Config == nil {
			tl.Config = DefaultTraceLogConfig()
		}
	})
}

func (tl *TraceLog) shouldLog(level log.Level) bool {
	return tl.Level != log.LevelNone && level <= tl.Level
}

func (tl *TraceLog) emit(ctx context.Context, level log.Level, msg string, data map[string]interface{}) {
	if tl.Logger == nil {
		return
	}
	tl.Logger.Log(ctx, level, msg, data)
}

type ctxKey int

const (
	_ ctxKey = iota
	runCtxKey
	pullCtxKey
	discardCtxKey
	txCtxKey
	acquireCtxKey
)

type runData struct {
	startTime time.Time
	query     string
}

// TraceRunStart is called before a RUN request is sent.
func (tl *TraceLog) TraceRunStart(ctx context.Context, query string) context.Context {
	return context.WithValue(ctx, runCtxKey, &runData{startTime: time.Now(), query: query})
}

// TraceRunEnd is called after the RUN's SUCCESS/FAILURE reply is decoded.
func (tl *TraceLog) TraceRunEnd(ctx context.Context, err error) {
	tl.ensureConfig()
	d, _ := ctx.Value(runCtxKey).(*runData)
	if d == nil {
		return
	}
	interval := time.Since(d.startTime)

	if err != nil {
		if tl.shouldLog(log.LevelError) {
			tl.emit(ctx, log.LevelError, "Run", map[string]interface{}{"query": d.query, "err": err, tl.Config.TimeKey: interval})
		}
		return
	}
	if tl.shouldLog(log.LevelInfo) {
		tl.emit(ctx, log.LevelInfo, "Run", map[string]interface{}{"query": d.query, tl.Config.TimeKey: interval})
	}
}

type pullData struct {
	startTime time.Time
	n         int64
}

func (tl *TraceLog) TracePullStart(ctx context.Context, n int64) context.Context {
	return context.WithValue(ctx, pullCtxKey, &pullData{startTime: time.Now(), n: n})
}

func (tl *TraceLog) TracePullEnd(ctx context.Context, records int, hasMore bool, err error) {
	d, _ := ctx.Value(pullCtxKey).(*pullData)
	if d == nil {
		return
	}
	interval := time.Since(d.startTime)

	if err != nil {
		if tl.shouldLog(log.LevelError) {
			tl.emit(ctx, log.LevelError, "Pull", map[string]interface{}{"n": d.n, "err": err, "time": interval})
		}
		return
	}
	if tl.shouldLog(log.LevelDebug) {
		tl.emit(ctx, log.LevelDebug, "Pull", map[string]interface{}{"n": d.n, "records": records, "hasMore": hasMore, "time": interval})
	}
}

func (tl *TraceLog) TraceDiscardStart(ctx context.Context) context.Context {
	return context.WithValue(ctx, discardCtxKey, time.Now())
}

func (tl *TraceLog) TraceDiscardEnd(ctx context.Context, err error) {
	start, _ := ctx.Value(discardCtxKey).(time.Time)
	interval := time.Since(start)

	if err != nil {
		if tl.shouldLog(log.LevelError) {
			tl.emit(ctx, log.LevelError, "Discard", map[string]interface{}{"err": err, "time": interval})
		}
		return
	}
	if tl.shouldLog(log.LevelDebug) {
		tl.emit(ctx, log.LevelDebug, "Discard", map[string]interface{}{"time": interval})
	}
}

type txData struct {
	startTime time.Time
	op        string
}

// TraceTxStart is called before BEGIN, COMMIT, or ROLLBACK is sent; op names
// which one.
func (tl *TraceLog) TraceTxStart(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, txCtxKey, &txData{startTime: time.Now(), op: op})
}

func (tl *TraceLog) TraceTxEnd(ctx context.Context, err error) {
	d, _ := ctx.Value(txCtxKey).(*txData)
	if d == nil {
		return
	}
	interval := time.Since(d.startTime)

	if err != nil {
		if tl.shouldLog(log.LevelError) {
			tl.emit(ctx, log.LevelError, d.op, map[string]interface{}{"err": err, "time": interval})
		}
		return
	}
	if tl.shouldLog(log.LevelInfo) {
		tl.emit(ctx, log.LevelInfo, d.op, map[string]interface{}{"time": interval})
	}
}

// TraceAcquireStart/End bracket a pool.Pool.Acquire call.
func (tl *TraceLog) TraceAcquireStart(ctx context.Context) context.Context {
	return context.WithValue(ctx, acquireCtxKey, time.Now())
}

func (tl *TraceLog) TraceAcquireEnd(ctx context.Context, err error) {
	start, _ := ctx.Value(acquireCtxKey).(time.Time)
	interval := time.Since(start)

	if err != nil {
		if tl.shouldLog(log.LevelError) {
			tl.emit(ctx, log.LevelError, "Acquire", map[string]interface{}{"err": err, "time": interval})
		}
		return
	}
	if tl.shouldLog(log.LevelDebug) {
		tl.emit(ctx, log.LevelDebug, "Acquire", map[string]interface{}{"time": interval})
	}
}

// TraceRelease is called when a connection is returned to the pool.
func (tl *TraceLog) TraceRelease(ctx context.Context, err error) {
	if err != nil {
		if tl.shouldLog(log.LevelWarn) {
			tl.emit(ctx, log.LevelWarn, "Release", map[string]interface{}{"err": err})
		}
		return
	}
	if tl.shouldLog(log.LevelDebug) {
		tl.emit(ctx, log.LevelDebug, "Release", nil)
	}
}
