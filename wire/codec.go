// Package wire implements the framed binary protocol: the version handshake,
// chunked message framing, and the typed-value encoding, following the
// structure of github.com/jackc/pgx/v5/pgproto3's Frontend (flyweight
// send/receive over a chunked reader) generalized from Postgres's
// fixed-header framing to this protocol's zero-chunk-terminated framing.
package wire

import (
	"io"

	"github.com/sumyiren/neo4rs-go/value"
)

// Codec drives one connection's message exchange: Send writes one
// chunk-framed message, Receive reads and decodes the next one. It holds no
// protocol-state beyond the byte stream; the conversation state machine
// lives one layer up, in Connection.
type Codec struct {
	w   io.Writer
	cr  *chunkReader
	buf []byte // reused scratch space for outgoing message bytes
}

// NewCodec wraps rw for message exchange. It does not perform the version
// handshake; call Handshake first if required.
func NewCodec(rw io.ReadWriter) *Codec {
	return &Codec{w: rw, cr: newChunkReader(rw, 0)}
}

// Send encodes one message (signature + positional fields) as a struct and
// writes it out in chunk-framed form.
func (c *Codec) Send(sig byte, fields []value.Value) error {
	msg := encodeStructHeader(c.buf[:0], len(fields), sig)
	var err error
	for _, f := range fields {
		msg, err = EncodeValue(msg, f)
		if err != nil {
			return err
		}
	}
	c.buf = msg
	return writeMessage(c.w, msg)
}

// Receive reads the next full message off the wire and decodes it as a
// top-level structure (signature + positional value fields).
func (c *Codec) Receive() (Response, error) {
	raw, err := readMessage(c.cr)
	if err != nil {
		return Response{}, err
	}

	d := &decoder{buf: raw}
	marker, err := d.byte()
	if err != nil {
		return Response{}, err
	}
	if marker&0xF0 != tinyStructBase {
		return Response{}, errInvalidTypeMarker(marker)
	}
	nFields := int(marker & 0x0F)

	sig, err := d.byte()
	if err != nil {
		return Response{}, err
	}
	kind, ok := responseKindFromSig(sig)
	if !ok {
		return Response{}, errUnknownTypeTag(sig)
	}

	fields := make([]value.Value, nFields)
	for i := 0; i < nFields; i++ {
		v, err := d.value()
		if err != nil {
			return Response{}, err
		}
		fields[i] = v
	}

	return Response{Kind: kind, Fields: fields}, nil
}
