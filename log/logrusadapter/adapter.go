// Package logrusadapter binds log.Logger to a github.com/sirupsen/logrus.Logger.
package logrusadapter

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/sumyiren/neo4rs-go/log"
)

type Logger struct {
	l *logrus.Logger
}

func NewLogger(l *logrus.Logger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, level log.Level, msg string, data map[string]interface{}) {
	var logger logrus.FieldLogger
	if data != nil {
		logger = l.l.WithFields(data)
	} else {
		logger = l.l
	}

	switch level {
	case log.LevelTrace:
		logger.WithField("neo4rs_log_level", level.String()).Debug(msg)
	case log.LevelDebug:
		logger.Debug(msg)
	case log.LevelInfo:
		logger.Info(msg)
	case log.LevelWarn:
		logger.Warn(msg)
	case log.LevelError:
		logger.Error(msg)
	default:
		logger.WithField("invalid_neo4rs_log_level", level.String()).Error(msg)
	}
}
