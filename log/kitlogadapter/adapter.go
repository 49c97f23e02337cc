// Package kitlogadapter binds log.Logger to a github.com/go-kit/log.Logger.
package kitlogadapter

import (
	"context"

	kitlog "github.com/go-kit/log"
	kitlevel "github.com/go-kit/log/level"

	"github.com/sumyiren/neo4rs-go/log"
)

type Logger struct {
	l kitlog.Logger
}

func NewLogger(l kitlog.Logger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, level log.Level, msg string, data map[string]interface{}) {
	logger := l.l
	if data != nil {
		keyvals := make([]interface{}, 0, 2*len(data))
		for k, v := range data {
			keyvals = append(keyvals, k, v)
		}
		logger = kitlog.With(l.l, keyvals...)
	}

	switch level {
	case log.LevelTrace:
		logger.Log("neo4rs_log_level", level.String(), "msg", msg)
	case log.LevelDebug:
		kitlevel.Debug(logger).Log("msg", msg)
	case log.LevelInfo:
		kitlevel.Info(logger).Log("msg", msg)
	case log.LevelWarn:
		kitlevel.Warn(logger).Log("msg", msg)
	case log.LevelError:
		kitlevel.Error(logger).Log("msg", msg)
	default:
		logger.Log("invalid_neo4rs_log_level", level.String(), "error", msg)
	}
}
