package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Magic is the 4-byte preamble sent before the version offer, identical for
// every connection regardless of negotiated version.
var Magic = [4]byte{0x60, 0x60, 0xB0, 0x17}

// ProtocolVersion is a negotiated (major, minor) wire version tag.
type ProtocolVersion struct {
	Major, Minor byte
}

func (v ProtocolVersion) pack() uint32 {
	return uint32(v.Minor)<<8 | uint32(v.Major)
}

func unpackVersion(u uint32) ProtocolVersion {
	return ProtocolVersion{Major: byte(u), Minor: byte(u >> 8)}
}

// IsZero reports whether v is the sentinel "no common version" reply.
func (v ProtocolVersion) IsZero() bool { return v.Major == 0 && v.Minor == 0 }

func (v ProtocolVersion) String() string { return fmt.Sprintf("%d.%d", v.Major, v.Minor) }

// DefaultOffers is the supported offer set in preference order, per spec §6:
// {v4.4, v4.3, v4.0, 0}. The trailing zero keeps the offer frame full-width
// (four u32 slots) without offering a fourth real version.
var DefaultOffers = []ProtocolVersion{
	{Major: 4, Minor: 4},
	{Major: 4, Minor: 3},
	{Major: 4, Minor: 0},
	{},
}

// Handshake writes the magic preamble and up to four version offers
// (0-padded to four slots), then reads the server's single chosen version.
// It returns UnsupportedVersion-shaped behavior (a zero ProtocolVersion) when
// the server rejects every offer; callers are expected to translate that
// into the driver's UnsupportedVersion error.
func Handshake(rw io.ReadWriter, offers []ProtocolVersion) (ProtocolVersion, error) {
	if len(offers) > 4 {
		offers = offers[:4]
	}

	buf := make([]byte, 0, 4+4*4)
	buf = append(buf, Magic[:]...)
	for i := 0; i < 4; i++ {
		var o ProtocolVersion
		if i < len(offers) {
			o = offers[i]
		}
		buf = binary.BigEndian.AppendUint32(buf, o.pack())
	}

	if _, err := rw.Write(buf); err != nil {
		return ProtocolVersion{}, err
	}

	var reply [4]byte
	if _, err := io.ReadFull(rw, reply[:]); err != nil {
		return ProtocolVersion{}, err
	}

	return unpackVersion(binary.BigEndian.Uint32(reply[:])), nil
}

// ServerHandshake reads a client's magic+offers frame and writes back the
// first offer present in supported (preference order), or the zero version
// if none match. It is the server-side counterpart to Handshake, used by
// internal/wiretest's fake server.
func ServerHandshake(rw io.ReadWriter, supported []ProtocolVersion) (ProtocolVersion, error) {
	var buf [4 + 4*4]byte
	if _, err := io.ReadFull(rw, buf[:]); err != nil {
		return ProtocolVersion{}, err
	}
	if [4]byte{buf[0], buf[1], buf[2], buf[3]} != Magic {
		return ProtocolVersion{}, fmt.Errorf("wire: bad magic preamble")
	}

	var offers [4]ProtocolVersion
	for i := 0; i < 4; i++ {
		offers[i] = unpackVersion(binary.BigEndian.Uint32(buf[4+i*4:]))
	}

	chosen := ProtocolVersion{}
	for _, offer := range offers {
		for _, s := range supported {
			if offer == s {
				chosen = offer
				break
			}
		}
		if !chosen.IsZero() {
			break
		}
	}

	var reply [4]byte
	binary.BigEndian.PutUint32(reply[:], chosen.pack())
	if _, err := rw.Write(reply[:]); err != nil {
		return ProtocolVersion{}, err
	}

	return chosen, nil
}
