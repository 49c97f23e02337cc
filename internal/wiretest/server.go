// Package wiretest provides a scriptable in-process fake server for
// protocol-level tests, analogous to jackc/pgx's pgmock: a Script of Steps
// driven against a wire.Codec instead of dialing a real socket.
package wiretest

import (
	"net"

	errors "golang.org/x/xerrors"

	"github.com/sumyiren/neo4rs-go/value"
	"github.com/sumyiren/neo4rs-go/wire"
)

// Step is one scripted server action: read the next client request and/or
// write a response.
type Step interface {
	Step(codec *wire.Codec) error
}

// Script runs a fixed sequence of Steps against one accepted connection.
type Script struct {
	Steps []Step
}

func (s *Script) Run(codec *wire.Codec) error {
	for i, step := range s.Steps {
		if err := step.Step(codec); err != nil {
			return errors.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

// ExpectAny reads and discards the next framed client request without
// inspecting it. The version handshake is not a framed message; ServeOne and
// AcceptServer perform it before any Step runs.
type ExpectAny struct{}

func (ExpectAny) Step(codec *wire.Codec) error {
	_, err := codec.Receive()
	return err
}

// SendSuccess replies SUCCESS with the given metadata to whatever request
// was just read by a preceding ExpectAny step.
type SendSuccess struct {
	Metadata map[string]value.Value
}

func (s SendSuccess) Step(codec *wire.Codec) error {
	return codec.Send(wire.SigSuccess, []value.Value{value.Map(s.Metadata)})
}

// SendFailure replies FAILURE with a ServerError-shaped metadata map.
type SendFailure struct {
	Code    string
	Message string
}

func (s SendFailure) Step(codec *wire.Codec) error {
	meta := map[string]value.Value{
		"code":    value.String(s.Code),
		"message": value.String(s.Message),
	}
	return codec.Send(wire.SigFailure, []value.Value{value.Map(meta)})
}

// SendRecords emits one RECORD message per row, in field order.
type SendRecords struct {
	Rows [][]value.Value
}

func (s SendRecords) Step(codec *wire.Codec) error {
	for _, row := range s.Rows {
		if err := codec.Send(wire.SigRecord, []value.Value{value.List(row)}); err != nil {
			return err
		}
	}
	return nil
}

// FakeServer listens on a loopback port and runs one Script per accepted
// connection, performing the server-side handshake first — the shape
// pgmock's Server/Controller use for a real listener, so tests that call
// neo4rs.Connect against a real "bolt://127.0.0.1:PORT" URI can run without
// a real server.
type FakeServer struct {
	ln        net.Listener
	supported []wire.ProtocolVersion
}

// NewFakeServer listens on an OS-assigned loopback port.
func NewFakeServer(supported []wire.ProtocolVersion) (*FakeServer, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	return &FakeServer{ln: ln, supported: supported}, nil
}

// Addr returns the "host:port" this server is listening on.
func (s *FakeServer) Addr() string { return s.ln.Addr().String() }

// Close stops accepting new connections.
func (s *FakeServer) Close() error { return s.ln.Close() }

// ServeOne accepts a single connection, negotiates the handshake, and runs
// script against it, then closes the connection.
func (s *FakeServer) ServeOne(script *Script) error {
	conn, err := s.ln.Accept()
	if err != nil {
		return err
	}
	defer conn.Close()

	codec, err := AcceptServer(conn, s.supported)
	if err != nil {
		return err
	}
	return script.Run(codec)
}

// Pipe wires a net.Pipe() pair and returns the raw client and server conns
// plus a teardown func that closes both. No handshake is performed: the
// caller runs DialClient on the client conn and AcceptServer (with its
// message loop) on the server conn in its own goroutine, the same shape
// pgmock's Server.ServeOne uses for a real listener.
func Pipe() (clientConn, serverConn net.Conn, teardown func()) {
	client, server := net.Pipe()
	return client, server, func() {
		client.Close()
		server.Close()
	}
}

// DialClient performs the client-side handshake over conn and returns a
// ready Codec.
func DialClient(conn net.Conn, offers []wire.ProtocolVersion) (*wire.Codec, error) {
	if _, err := wire.Handshake(conn, offers); err != nil {
		return nil, err
	}
	return wire.NewCodec(conn), nil
}

// AcceptServer performs the server-side handshake over conn, offering only
// supported, and returns a ready Codec.
func AcceptServer(conn net.Conn, supported []wire.ProtocolVersion) (*wire.Codec, error) {
	if _, err := wire.ServerHandshake(conn, supported); err != nil {
		return nil, err
	}
	return wire.NewCodec(conn), nil
}
