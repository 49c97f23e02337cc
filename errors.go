package neo4rs

import (
	"fmt"

	errors "golang.org/x/xerrors"
)

// Error taxonomy, per spec §7: one kind per semantic failure, not per call
// site. All errors are propagated to the caller as typed failures — there is
// no recovery inside the codec or connection layer; retry.Executor is the
// sole layer that classifies and retries.
//
// Ground truth: jackc/pgx/v5's pgconn/errors.go, which wraps with
// golang.org/x/xerrors so callers can keep using errors.Is/errors.As across
// layers; PgError there is the direct model for ServerError here.

// InvalidConfigError is returned by ConfigBuilder.Build when URI or User is
// unset, or when FetchSize, MaxConnections, MaxRetryTimeMs,
// InitialRetryDelayMs or RetryDelayMultiplier is not > 0. Password and
// RetryDelayJitterFactor are not checked.
type InvalidConfigError struct {
	Reason string
}

func (e *InvalidConfigError) Error() string { return "neo4rs: invalid config: " + e.Reason }

// IOError wraps a socket-level failure. The connection that produced it is no
// longer usable and must be discarded by the pool, never reset.
type IOError struct {
	Err error
}

func (e *IOError) Error() string { return fmt.Sprintf("neo4rs: io error: %v", e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

// ConnectionError is returned when the pool could not provide a connection
// (construction failed, or the acquire deadline/context expired).
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string { return fmt.Sprintf("neo4rs: connection error: %v", e.Err) }
func (e *ConnectionError) Unwrap() error { return e.Err }

// AuthenticationError wraps the message field of a HELLO FAILURE reply.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string { return "neo4rs: authentication failed: " + e.Message }

// UnsupportedVersionError is returned when the handshake reply selects no
// common protocol version (the all-zero reply).
type UnsupportedVersionError struct{}

func (e *UnsupportedVersionError) Error() string {
	return "neo4rs: server did not accept any offered protocol version"
}

// ConversionError is returned when a decoded field does not match the shape
// a caller asked for. See value.ConversionError for the underlying detail.
type ConversionError struct {
	Err error
}

func (e *ConversionError) Error() string { return fmt.Sprintf("neo4rs: conversion error: %v", e.Err) }
func (e *ConversionError) Unwrap() error { return e.Err }

// SerializationError wraps a wire.SerializationError (StringTooLong,
// MapTooBig, BytesTooBig, ListTooLong, InvalidTypeMarker, UnknownTypeTag).
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string { return fmt.Sprintf("neo4rs: %v", e.Err) }
func (e *SerializationError) Unwrap() error { return e.Err }

// UnexpectedMessageError is returned when a protocol reply does not match the
// requested operation, e.g. a FAILURE in response to RUN or a RECORD in
// response to BEGIN.
type UnexpectedMessageError struct {
	Context string
}

func (e *UnexpectedMessageError) Error() string {
	return "neo4rs: unexpected message: " + e.Context
}

func unexpectedMessage(operation, gotKind string) error {
	return &UnexpectedMessageError{Context: fmt.Sprintf("%s received unexpected %s", operation, gotKind)}
}

// ServerError carries a FAILURE payload reported by the server. Code follows
// the server's own namespaced classification scheme (e.g.
// "Neo.ClientError.Security.Unauthorized"); retry.Executor consults a
// RetriableCodes table keyed on this field (spec §9 Open Question (a)).
type ServerError struct {
	Code    string
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("neo4rs: server error %s: %s", e.Code, e.Message)
}

// linkedError connects two errors as if err wrapped next, the same shape as
// pgconn's linkedError, so callers can errors.Is/errors.As through both.
type linkedError struct {
	err  error
	next error
}

func (le *linkedError) Error() string  { return le.err.Error() }
func (le *linkedError) Unwrap() error  { return le.next }
func (le *linkedError) Is(t error) bool {
	return errors.Is(le.err, t)
}
func (le *linkedError) As(t interface{}) bool {
	return errors.As(le.err, t)
}

func linkErrors(outer, inner error) error {
	if outer == nil {
		return inner
	}
	if inner == nil {
		return outer
	}
	return &linkedError{err: outer, next: inner}
}
