// Package testingadapter binds log.Logger to a test or benchmark log, via the
// subset of testing.TB it needs.
package testingadapter

import (
	"context"
	"fmt"

	"github.com/sumyiren/neo4rs-go/log"
)

// TestingLogger is the subset of testing.TB this adapter uses.
type TestingLogger interface {
	Log(args ...interface{})
}

type Logger struct {
	l TestingLogger
}

func NewLogger(l TestingLogger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, level log.Level, msg string, data map[string]interface{}) {
	logArgs := make([]interface{}, 0, 2+len(data))
	logArgs = append(logArgs, level.String(), msg)
	for k, v := range data {
		logArgs = append(logArgs, fmt.Sprintf("%s=%v", k, v))
	}
	l.l.Log(logArgs...)
}
