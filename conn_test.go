package neo4rs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumyiren/neo4rs-go/internal/wiretest"
	"github.com/sumyiren/neo4rs-go/value"
	"github.com/sumyiren/neo4rs-go/wire"
)

// newTestConnection negotiates the handshake over a net.Pipe and returns a
// ready client-side Connection plus the server's Codec, so tests can script
// replies directly without a real listener.
func newTestConnection(t *testing.T) (conn *Connection, serverCodec *wire.Codec, teardown func()) {
	t.Helper()
	clientConn, serverConn, teardown := wiretest.Pipe()

	serverCh := make(chan *wire.Codec, 1)
	go func() {
		codec, err := wiretest.AcceptServer(serverConn, wire.DefaultOffers)
		if err != nil {
			serverCh <- nil
			return
		}
		serverCh <- codec
	}()

	clientCodec, err := wiretest.DialClient(clientConn, wire.DefaultOffers)
	require.NoError(t, err)

	serverCodec = <-serverCh
	require.NotNil(t, serverCodec)

	conn = &Connection{
		netConn:      clientConn,
		codec:        clientCodec,
		version:      wire.DefaultOffers[0],
		state:        stateIdle,
		lastVerified: time.Now(),
	}
	return conn, serverCodec, teardown
}

func TestConnectionHelloSuccess(t *testing.T) {
	conn, serverCodec, teardown := newTestConnection(t)
	defer teardown()

	serverDone := make(chan error, 1)
	go func() {
		if _, err := serverCodec.Receive(); err != nil {
			serverDone <- err
			return
		}
		serverDone <- serverCodec.Send(wire.SigSuccess, []value.Value{value.Map(map[string]value.Value{
			"server": value.String("test/1"),
		})})
	}()

	cfg := &Config{UserAgent: "neo4rs-go/test", User: "neo4j", Password: "secret"}
	err := conn.hello(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, <-serverDone)
	assert.True(t, conn.IsAlive())
}

func TestConnectionHelloAuthenticationFailure(t *testing.T) {
	conn, serverCodec, teardown := newTestConnection(t)
	defer teardown()

	serverDone := make(chan error, 1)
	go func() {
		if _, err := serverCodec.Receive(); err != nil {
			serverDone <- err
			return
		}
		serverDone <- serverCodec.Send(wire.SigFailure, []value.Value{value.Map(map[string]value.Value{
			"code":    value.String("Neo.ClientError.Security.Unauthorized"),
			"message": value.String("invalid credentials"),
		})})
	}()

	cfg := &Config{UserAgent: "neo4rs-go/test", User: "neo4j", Password: "wrong"}
	err := conn.hello(context.Background(), cfg)
	require.NoError(t, <-serverDone)

	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "invalid credentials", authErr.Message)
}

func TestConnectionExchangeMarksFailedOnIOError(t *testing.T) {
	conn, _, teardown := newTestConnection(t)
	defer teardown()

	conn.netConn.Close()

	_, err := conn.exchange(context.Background(), wire.SigReset, nil)
	require.Error(t, err)

	var ioErr *IOError
	assert.ErrorAs(t, err, &ioErr)
	assert.True(t, conn.IsFailed())
	assert.False(t, conn.IsAlive())
}

func TestConnectionExchangeMarksFailedOnIgnored(t *testing.T) {
	conn, serverCodec, teardown := newTestConnection(t)
	defer teardown()

	serverDone := make(chan error, 1)
	go func() {
		if _, err := serverCodec.Receive(); err != nil {
			serverDone <- err
			return
		}
		serverDone <- serverCodec.Send(wire.SigIgnored, nil)
	}()

	resp, err := conn.exchange(context.Background(), wire.SigRun, nil)
	require.NoError(t, err)
	require.NoError(t, <-serverDone)

	assert.Equal(t, wire.Ignored, resp.Kind)
	assert.True(t, conn.IsFailed())
}

func TestConnectionResetSkipsRoundTripWhenRecentlyVerified(t *testing.T) {
	conn, _, teardown := newTestConnection(t)
	defer teardown()

	conn.lastVerified = time.Now()
	conn.state = stateIdle

	// No server goroutine at all: if Reset attempted a round-trip here, it
	// would block forever on the unattended pipe and the test would time out.
	err := conn.Reset(context.Background())
	require.NoError(t, err)
}

func TestConnectionExchangeInterruptedByContextCancel(t *testing.T) {
	conn, serverCodec, teardown := newTestConnection(t)
	defer teardown()

	// The server reads the request but never replies, so the only way
	// exchange returns is via the ctxwatch-driven cancellation below.
	go func() { _, _ = serverCodec.Receive() }()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := conn.exchange(ctx, wire.SigRun, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, conn.IsFailed())
}

func TestConnectionResetClearsFailedState(t *testing.T) {
	conn, serverCodec, teardown := newTestConnection(t)
	defer teardown()
	conn.state = stateFailed
	conn.lastVerified = time.Now().Add(-time.Hour)

	serverDone := make(chan error, 1)
	go func() {
		if _, err := serverCodec.Receive(); err != nil {
			serverDone <- err
			return
		}
		serverDone <- serverCodec.Send(wire.SigSuccess, []value.Value{value.Map(nil)})
	}()

	err := conn.Reset(context.Background())
	require.NoError(t, err)
	require.NoError(t, <-serverDone)
	assert.True(t, conn.IsAlive())
	assert.False(t, conn.IsFailed())
}
