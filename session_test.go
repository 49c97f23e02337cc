package neo4rs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumyiren/neo4rs-go/internal/wiretest"
	"github.com/sumyiren/neo4rs-go/value"
	"github.com/sumyiren/neo4rs-go/wire"
)

func TestSessionExecuteWriteRetriesOnTransientServerError(t *testing.T) {
	server, err := wiretest.NewFakeServer(wire.DefaultOffers)
	require.NoError(t, err)
	defer server.Close()

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- server.ServeOne(&wiretest.Script{Steps: []wiretest.Step{
			wiretest.ExpectAny{},               // HELLO
			wiretest.SendSuccess{Metadata: nil}, // HELLO ok

			wiretest.ExpectAny{},               // BEGIN (attempt 1)
			wiretest.SendSuccess{Metadata: nil},
			wiretest.ExpectAny{}, // RUN (attempt 1)
			wiretest.SendFailure{Code: "Neo.TransientError.Transaction.DeadlockDetected", Message: "retry me"},
			wiretest.ExpectAny{}, // ROLLBACK (attempt 1, best-effort)
			wiretest.SendSuccess{Metadata: nil},

			wiretest.ExpectAny{}, // BEGIN (attempt 2)
			wiretest.SendSuccess{Metadata: nil},
			wiretest.ExpectAny{}, // RUN (attempt 2)
			wiretest.SendSuccess{Metadata: map[string]value.Value{
				"fields": value.List([]value.Value{value.String("n")}),
				"qid":    value.Int(1),
			}},
			wiretest.ExpectAny{}, // PULL, drained by Collect inside work
			wiretest.SendRecords{Rows: [][]value.Value{{value.Int(1)}}},
			wiretest.SendSuccess{Metadata: map[string]value.Value{"has_more": value.Bool(false)}},
			wiretest.ExpectAny{}, // COMMIT (attempt 2)
			wiretest.SendSuccess{Metadata: nil},
		}})
	}()

	cfg, err := NewConfigBuilder().
		WithURI("bolt://" + server.Addr()).
		WithUser("neo4j").
		WithPassword("secret").
		WithInitialRetryDelay(1).
		WithMaxRetryTime(2000).
		WithRetryDelayMultiplier(2).
		WithRetryDelayJitterFactor(0).
		Build()
	require.NoError(t, err)

	driver, err := NewDriver(cfg)
	require.NoError(t, err)
	defer driver.Close()

	session, err := driver.NewSession(context.Background(), "")
	require.NoError(t, err)
	defer session.Close()

	attempts := 0
	result, err := session.ExecuteWrite(context.Background(), func(ctx context.Context, tx *Transaction) (interface{}, error) {
		attempts++
		stream, err := tx.Run(ctx, "RETURN 1 AS n", nil)
		if err != nil {
			return nil, err
		}
		return stream.Collect(ctx)
	})
	require.NoError(t, err)
	require.NoError(t, <-serverDone)

	assert.Equal(t, 2, attempts)
	rows, ok := result.([]Row)
	require.True(t, ok)
	require.Len(t, rows, 1)
	v, _ := rows[0].Get("n")
	n, _ := v.AsInt()
	assert.Equal(t, int64(1), n)
}

func TestSessionExecuteRunsAndDiscardsAutoCommit(t *testing.T) {
	server, err := wiretest.NewFakeServer(wire.DefaultOffers)
	require.NoError(t, err)
	defer server.Close()

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- server.ServeOne(&wiretest.Script{Steps: []wiretest.Step{
			wiretest.ExpectAny{},               // HELLO
			wiretest.SendSuccess{Metadata: nil}, // HELLO ok
			wiretest.ExpectAny{},                // RUN
			wiretest.SendSuccess{Metadata: map[string]value.Value{
				"fields": value.List(nil),
				"qid":    value.Int(7),
			}},
			wiretest.ExpectAny{},               // DISCARD
			wiretest.SendSuccess{Metadata: nil}, // DISCARD ok
		}})
	}()

	cfg, err := NewConfigBuilder().
		WithURI("bolt://" + server.Addr()).
		WithUser("neo4j").
		WithPassword("secret").
		Build()
	require.NoError(t, err)

	driver, err := NewDriver(cfg)
	require.NoError(t, err)
	defer driver.Close()

	session, err := driver.NewSession(context.Background(), "")
	require.NoError(t, err)
	defer session.Close()

	err = session.Execute(context.Background(), "CREATE (n:Person {name:'apple'})", nil)
	require.NoError(t, err)
	require.NoError(t, <-serverDone)
}

func TestSessionBeginTransactionRunCommit(t *testing.T) {
	server, err := wiretest.NewFakeServer(wire.DefaultOffers)
	require.NoError(t, err)
	defer server.Close()

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- server.ServeOne(&wiretest.Script{Steps: []wiretest.Step{
			wiretest.ExpectAny{},               // HELLO
			wiretest.SendSuccess{Metadata: nil}, // HELLO ok
			wiretest.ExpectAny{},                // BEGIN
			wiretest.SendSuccess{Metadata: nil},
			wiretest.ExpectAny{}, // RUN
			wiretest.SendSuccess{Metadata: map[string]value.Value{
				"fields": value.List([]value.Value{value.String("n")}),
				"qid":    value.Int(1),
			}},
			wiretest.ExpectAny{}, // PULL
			wiretest.SendRecords{Rows: [][]value.Value{{value.Int(9)}}},
			wiretest.SendSuccess{Metadata: map[string]value.Value{"has_more": value.Bool(false)}},
			wiretest.ExpectAny{}, // COMMIT
			wiretest.SendSuccess{Metadata: nil},
		}})
	}()

	cfg, err := NewConfigBuilder().
		WithURI("bolt://" + server.Addr()).
		WithUser("neo4j").
		WithPassword("secret").
		Build()
	require.NoError(t, err)

	driver, err := NewDriver(cfg)
	require.NoError(t, err)
	defer driver.Close()

	session, err := driver.NewSession(context.Background(), "")
	require.NoError(t, err)
	defer session.Close()

	tx, err := session.BeginTransaction(context.Background(), ModeWrite)
	require.NoError(t, err)

	stream, err := tx.Run(context.Background(), "RETURN 9 AS n", nil)
	require.NoError(t, err)

	rows, err := stream.Collect(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Commit(context.Background()))
	require.NoError(t, <-serverDone)

	require.Len(t, rows, 1)
	v, _ := rows[0].Get("n")
	n, _ := v.AsInt()
	assert.Equal(t, int64(9), n)
}
