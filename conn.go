package neo4rs

import (
	"context"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/sumyiren/neo4rs-go/internal/ctxwatch"
	"github.com/sumyiren/neo4rs-go/log"
	"github.com/sumyiren/neo4rs-go/value"
	"github.com/sumyiren/neo4rs-go/wire"
)

// connState is the per-connection conversation state machine (spec §5):
//
//	idle -> running -> streaming -> idle (after PULL/DISCARD exhausts the result)
//	idle -> txReady -> txStreaming -> txReady -> idle (BEGIN .. COMMIT/ROLLBACK)
//	any non-failed state -> failed, on a FAILURE reply; only Reset recovers it.
type connState int

const (
	stateIdle connState = iota
	stateRunning
	stateStreaming
	stateTxReady
	stateTxStreaming
	stateFailed
)

// Connection is one authenticated socket to the server, driving exactly one
// conversation at a time. It is not safe for concurrent use — the pool
// hands out exclusive access to one caller at a time, the same contract
// jackc/pgx/v5's base.Conn documents for its single Frontend.
type Connection struct {
	netConn net.Conn
	codec   *wire.Codec

	version wire.ProtocolVersion

	mu           sync.Mutex
	state        connState
	lastVerified time.Time

	database  string
	userAgent string

	logger   log.Logger
	logLevel log.Level

	watcher *ctxwatch.ContextWatcher
}

// dial opens the TCP connection named by uri ("bolt://host:port" or
// "neo4j://host:port") and performs the version handshake.
func dial(ctx context.Context, uri string, offers []wire.ProtocolVersion) (net.Conn, wire.ProtocolVersion, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, wire.ProtocolVersion{}, &InvalidConfigError{Reason: "URI: " + err.Error()}
	}

	host := u.Host
	if u.Port() == "" {
		host = net.JoinHostPort(u.Hostname(), "7687")
	}

	var d net.Dialer
	nc, err := d.DialContext(ctx, "tcp", host)
	if err != nil {
		return nil, wire.ProtocolVersion{}, &ConnectionError{Err: err}
	}

	version, err := wire.Handshake(nc, offers)
	if err != nil {
		nc.Close()
		return nil, wire.ProtocolVersion{}, &IOError{Err: err}
	}
	if version.IsZero() {
		nc.Close()
		return nil, wire.ProtocolVersion{}, &UnsupportedVersionError{}
	}

	return nc, version, nil
}

// connect dials cfg.URI, negotiates a protocol version, and authenticates
// via HELLO. The returned Connection is idle and ready for RUN/BEGIN.
func connect(ctx context.Context, cfg *Config) (*Connection, error) {
	nc, version, err := dial(ctx, cfg.URI, wire.DefaultOffers)
	if err != nil {
		return nil, err
	}

	c := &Connection{
		netConn:      nc,
		codec:        wire.NewCodec(nc),
		version:      version,
		state:        stateIdle,
		lastVerified: time.Now(),
		database:     cfg.Database,
		userAgent:    cfg.UserAgent,
		logger:       cfg.Logger,
		logLevel:     cfg.LogLevel,
	}

	if err := c.hello(ctx, cfg); err != nil {
		nc.Close()
		return nil, err
	}

	return c, nil
}

func (c *Connection) hello(ctx context.Context, cfg *Config) error {
	sig, fields := wire.HelloRequest(cfg.UserAgent, cfg.User, cfg.Password)
	resp, err := c.exchange(ctx, sig, fields)
	if err != nil {
		return err
	}

	switch resp.Kind {
	case wire.Success:
		return nil
	case wire.Failure:
		meta := resp.Metadata()
		msg, _ := meta["message"].AsString()
		return &AuthenticationError{Message: msg}
	default:
		return unexpectedMessage("HELLO", resp.Kind.String())
	}
}

// exchange sends one request and reads back exactly one non-RECORD reply.
// It is the primitive every RUN/PULL/DISCARD/BEGIN/COMMIT/ROLLBACK/RESET
// call funnels through, so socket errors uniformly mark the connection
// FAILED — except that a socket error always requires discarding the
// connection outright, since there is no way to know what state the server
// thinks it is in.
func (c *Connection) exchange(ctx context.Context, sig byte, fields []value.Value) (wire.Response, error) {
	if deadline, ok := ctx.Deadline(); ok {
		c.netConn.SetDeadline(deadline)
		defer c.netConn.SetDeadline(time.Time{})
	}

	// ctxwatch interrupts a blocking Send/Receive the instant ctx is
	// canceled, even when ctx carries no deadline of its own — the
	// SetDeadline call above only helps once the deadline is actually
	// reached, not on an earlier explicit cancel.
	if c.watcher == nil {
		c.watcher = ctxwatch.NewContextWatcher(
			func() { c.netConn.SetDeadline(time.Unix(0, 1)) },
			func() { c.netConn.SetDeadline(time.Time{}) },
		)
	}
	c.watcher.Watch(ctx)
	defer c.watcher.Unwatch()

	if err := c.codec.Send(sig, fields); err != nil {
		c.markFailed()
		if ctx.Err() != nil {
			return wire.Response{}, ctx.Err()
		}
		return wire.Response{}, &IOError{Err: err}
	}

	resp, err := c.codec.Receive()
	if err != nil {
		c.markFailed()
		if ctx.Err() != nil {
			return wire.Response{}, ctx.Err()
		}
		return wire.Response{}, &IOError{Err: err}
	}

	if resp.Kind == wire.Ignored {
		// IGNORED means the server rejected the request because the
		// connection was already FAILED (spec §9 Open Question (b)): the
		// conversation cannot proceed until RESET clears it.
		c.setState(stateFailed)
	}

	return resp, nil
}

func (c *Connection) setState(s connState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Connection) markFailed() {
	c.setState(stateFailed)
}

// IsAlive reports whether the connection is outside the FAILED state, the
// same condition as !IsFailed; a successful Reset makes it alive again.
func (c *Connection) IsAlive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state != stateFailed
}

// IsFailed reports whether the conversation is in the FAILED state and
// needs a RESET before it can be reused. The pool destroys a FAILED
// connection when it is released or acquired; it does not try a RESET on it
// first, whether the failure came from a socket error or a FAILURE reply.
func (c *Connection) IsFailed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateFailed
}

// Reset clears a non-idle conversation (FAILED, or abandoned mid-stream/
// mid-transaction by a caller that dropped its RowStream/Transaction without
// draining it) via the RESET message, or — if the connection is already idle
// and was verified less than one second ago — skips the round-trip entirely
// (spec §5 liveness optimization: a connection verified this recently is
// assumed still healthy).
func (c *Connection) Reset(ctx context.Context) error {
	c.mu.Lock()
	needsReset := c.state != stateIdle
	recentlyVerified := time.Since(c.lastVerified) < time.Second
	c.mu.Unlock()

	if !needsReset && recentlyVerified {
		return nil
	}

	sig, fields := wire.ResetRequest()
	resp, err := c.exchange(ctx, sig, fields)
	if err != nil {
		return err
	}
	if resp.Kind != wire.Success {
		return unexpectedMessage("RESET", resp.Kind.String())
	}

	c.mu.Lock()
	c.state = stateIdle
	c.lastVerified = time.Now()
	c.mu.Unlock()
	return nil
}

// Close tears down the socket without a courtesy GOODBYE — the wire
// protocol this driver speaks predates the GOODBYE message used by later
// Bolt versions.
func (c *Connection) Close() error {
	if c.watcher != nil {
		c.watcher.Stop()
	}
	return c.netConn.Close()
}
