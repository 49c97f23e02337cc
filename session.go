package neo4rs

import (
	"context"

	"github.com/sumyiren/neo4rs-go/pool"
	"github.com/sumyiren/neo4rs-go/retry"
	"github.com/sumyiren/neo4rs-go/value"
)

// AccessMode is forwarded to the server in BEGIN metadata so it can route
// the transaction to the right member of a read/write topology (spec §4.6).
type AccessMode string

const (
	ModeRead  AccessMode = "r"
	ModeWrite AccessMode = "w"
)

const (
	modeRead  = string(ModeRead)
	modeWrite = string(ModeWrite)
)

// Session is the per-goroutine facade most callers use: it acquires one
// connection from the pool for its lifetime, runs auto-commit queries
// directly, and retries explicit transactions via ExecuteRead/ExecuteWrite.
// Not safe for concurrent use from multiple goroutines, matching the
// single-Frontend-per-Conn contract the wire layer requires.
type Session struct {
	pool      *pool.Pool[*Connection]
	res       *pool.Resource[*Connection]
	db        string
	fetchSize int64
	executor  *retry.Executor
}

func newSession(p *pool.Pool[*Connection], res *pool.Resource[*Connection], db string, fetchSize int64, executor *retry.Executor) *Session {
	return &Session{pool: p, res: res, db: db, fetchSize: fetchSize, executor: executor}
}

// Run executes query in auto-commit mode (no explicit transaction) and
// returns a lazy RowStream.
func (s *Session) Run(ctx context.Context, query string, params map[string]value.Value) (*RowStream, error) {
	conn := s.res.Value()
	result, err := conn.run(ctx, query, params, s.db, modeWrite)
	if err != nil {
		return nil, err
	}
	return newRowStream(conn, result, s.fetchSize), nil
}

// Execute runs query in auto-commit mode and discards its result without
// materializing any rows, returning only an error — for side-effect-only
// statements whose return value the caller has no use for (spec §4.6
// "execute(query)"). Unlike Run, the connection is idle again once Execute
// returns; there is no RowStream for the caller to drain.
func (s *Session) Execute(ctx context.Context, query string, params map[string]value.Value) error {
	conn := s.res.Value()
	result, err := conn.run(ctx, query, params, s.db, modeWrite)
	if err != nil {
		return err
	}
	return conn.discard(ctx, result.qid)
}

// BeginTransaction opens an explicit transaction in the given AccessMode on
// this Session's connection (spec §4.6 "beginTransaction() → Transaction").
// Unlike ExecuteRead/ExecuteWrite, it has no retry/backoff wrapping: the
// caller owns Commit/Rollback and must retry the whole thing itself if it
// wants that behavior.
func (s *Session) BeginTransaction(ctx context.Context, mode AccessMode) (*Transaction, error) {
	conn := s.res.Value()
	return beginTransaction(ctx, conn, s.db, string(mode), s.fetchSize)
}

// TxWork is the caller-supplied unit of work for ExecuteRead/ExecuteWrite.
// It must not retain tx past return, since a retried attempt runs on a
// different Transaction value sharing the same underlying Connection.
type TxWork func(ctx context.Context, tx *Transaction) (interface{}, error)

// ExecuteRead runs work inside a BEGIN/COMMIT transaction opened in read
// mode, retrying on a transient server error per retry.Executor's backoff
// policy (spec §4.7/§9).
func (s *Session) ExecuteRead(ctx context.Context, work TxWork) (interface{}, error) {
	return s.executeWithRetry(ctx, modeRead, work)
}

// ExecuteWrite is ExecuteRead opened in write mode.
func (s *Session) ExecuteWrite(ctx context.Context, work TxWork) (interface{}, error) {
	return s.executeWithRetry(ctx, modeWrite, work)
}

func (s *Session) executeWithRetry(ctx context.Context, mode string, work TxWork) (interface{}, error) {
	conn := s.res.Value()
	var result interface{}
	var tx *Transaction

	attempt := func(ctx context.Context) error {
		var err error
		tx, err = beginTransaction(ctx, conn, s.db, mode, s.fetchSize)
		if err != nil {
			return err
		}

		result, err = work(ctx, tx)
		if err != nil {
			return err
		}

		return tx.Commit(ctx)
	}

	rollback := func(ctx context.Context) error {
		if tx == nil {
			return nil
		}
		return tx.Rollback(ctx)
	}

	err := s.executor.Run(ctx, attempt, rollback)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Close returns the underlying connection to the pool. After Close, the
// Session must not be used.
func (s *Session) Close() {
	if s.res != nil {
		s.res.Release()
		s.res = nil
	}
}
