// Package log15adapter binds log.Logger to a
// gopkg.in/inconshreveable/log15.v2.Logger.
package log15adapter

import (
	"context"

	"github.com/sumyiren/neo4rs-go/log"
)

// Log15Logger is the subset of log15.Logger this adapter uses.
type Log15Logger interface {
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Crit(msg string, ctx ...interface{})
}

type Logger struct {
	l Log15Logger
}

func NewLogger(l Log15Logger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, level log.Level, msg string, data map[string]interface{}) {
	fctx := make([]interface{}, 0, 2*len(data))
	for k, v := range data {
		fctx = append(fctx, k, v)
	}

	switch level {
	case log.LevelTrace:
		l.l.Debug(msg, append(fctx, "neo4rs_log_level", level.String())...)
	case log.LevelDebug:
		l.l.Debug(msg, fctx...)
	case log.LevelInfo:
		l.l.Info(msg, fctx...)
	case log.LevelWarn:
		l.l.Warn(msg, fctx...)
	case log.LevelError:
		l.l.Error(msg, fctx...)
	default:
		l.l.Error(msg, append(fctx, "invalid_neo4rs_log_level", level.String())...)
	}
}
