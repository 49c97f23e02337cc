package wire

import "fmt"

// SerializationError is returned by the value encoder when a value exceeds
// one of the wire format's size limits or has no wire encoding, and by the
// decoder on an invalid type marker or unknown structure tag. Connection
// reports it wrapped in an IOError.
type SerializationError struct {
	Reason string
}

func (e *SerializationError) Error() string { return "wire: " + e.Reason }

func errStringTooLong(n int) error {
	return &SerializationError{Reason: fmt.Sprintf("string of %d bytes exceeds maximum of %d", n, maxSize32)}
}

func errBytesTooBig(n int) error {
	return &SerializationError{Reason: fmt.Sprintf("byte string of %d bytes exceeds maximum of %d", n, maxSize32)}
}

func errListTooLong(n int) error {
	return &SerializationError{Reason: fmt.Sprintf("list of %d entries exceeds maximum of %d", n, maxSize32)}
}

func errMapTooBig(n int) error {
	return &SerializationError{Reason: fmt.Sprintf("map of %d entries exceeds maximum of %d", n, maxSize32)}
}

func errUnknownTypeTag(tag byte) error {
	return &SerializationError{Reason: fmt.Sprintf("unknown type tag 0x%02x", tag)}
}

func errInvalidTypeMarker(marker byte) error {
	return &SerializationError{Reason: fmt.Sprintf("invalid type marker 0x%02x", marker)}
}

const maxSize32 = 1<<31 - 1
