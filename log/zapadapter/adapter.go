// Package zapadapter binds log.Logger to a go.uber.org/zap.Logger. The
// teacher repo declares zap in go.mod without ever wiring it to a log
// adapter; this package gives that dependency a home, in the same shape as
// the sibling adapters.
package zapadapter

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sumyiren/neo4rs-go/log"
)

type Logger struct {
	l *zap.Logger
}

func NewLogger(l *zap.Logger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, level log.Level, msg string, data map[string]interface{}) {
	fields := make([]zap.Field, 0, len(data))
	for k, v := range data {
		fields = append(fields, zap.Any(k, v))
	}

	var zlevel zapcore.Level
	switch level {
	case log.LevelTrace, log.LevelDebug:
		zlevel = zapcore.DebugLevel
	case log.LevelInfo:
		zlevel = zapcore.InfoLevel
	case log.LevelWarn:
		zlevel = zapcore.WarnLevel
	case log.LevelError:
		zlevel = zapcore.ErrorLevel
	default:
		fields = append(fields, zap.String("invalid_neo4rs_log_level", level.String()))
		zlevel = zapcore.ErrorLevel
	}

	if ce := l.l.Check(zlevel, msg); ce != nil {
		ce.Write(fields...)
	}
}
