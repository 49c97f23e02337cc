// Package log defines the logging facade this driver calls through, and the
// adapter packages that bind it to a specific third-party logger. The shape
// follows jackc/pgx's own log package: a small Level enum plus a one-method
// Logger interface, with one adapter subpackage per backend.
package log

import "context"

// Level orders log severities from most to least verbose, matching the
// ordering (if not the exact values) of pgx.LogLevel.
type Level int

const (
	LevelNone Level = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	case LevelTrace:
		return "trace"
	default:
		return "invalid"
	}
}

// Logger is the facade every adapter package implements. data carries
// structured fields (operation name, query, duration, error) the way
// tracelog.TraceLog populates them.
type Logger interface {
	Log(ctx context.Context, level Level, msg string, data map[string]interface{})
}

// NopLogger discards everything. It is the Config default so a driver built
// without WithLogger never logs.
type NopLogger struct{}

func (NopLogger) Log(context.Context, Level, string, map[string]interface{}) {}
