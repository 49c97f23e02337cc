package wire

import (
	"encoding/binary"
	"io"
)

// MaxChunkSize is the largest payload a single chunk may carry: 65_535 minus
// the u16 length prefix itself.
const MaxChunkSize = 65_535 - 2

// terminator is the zero-length chunk that ends every message, including
// empty ones.
var terminator = [2]byte{0x00, 0x00}

// writeMessage splits payload into MaxChunkSize chunks, each prefixed by its
// big-endian u16 length, and appends the terminator. An empty payload
// serializes as just the terminator (spec §6).
func writeMessage(w io.Writer, payload []byte) error {
	var hdr [2]byte
	for len(payload) > 0 {
		n := len(payload)
		if n > MaxChunkSize {
			n = MaxChunkSize
		}
		binary.BigEndian.PutUint16(hdr[:], uint16(n))
		if _, err := w.Write(hdr[:]); err != nil {
			return err
		}
		if _, err := w.Write(payload[:n]); err != nil {
			return err
		}
		payload = payload[n:]
	}
	_, err := w.Write(terminator[:])
	return err
}

// readMessage reassembles chunks from cr until it reads the zero-length
// terminator, returning the concatenated message payload.
func readMessage(cr *chunkReader) ([]byte, error) {
	var msg []byte
	for {
		hdr, err := cr.Next(2)
		if err != nil {
			return nil, err
		}
		n := int(binary.BigEndian.Uint16(hdr))
		if n == 0 {
			return msg, nil
		}
		chunk, err := cr.Next(n)
		if err != nil {
			return nil, err
		}
		msg = append(msg, chunk...)
	}
}
