// Package zerologadapter binds log.Logger to a github.com/rs/zerolog.Logger.
package zerologadapter

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/sumyiren/neo4rs-go/log"
)

type Logger struct {
	logger      zerolog.Logger
	withFunc    func(context.Context, zerolog.Context) zerolog.Context
	fromContext bool
	skipModule  bool
}

type option func(logger *Logger)

// WithContextFunc adds request-scoped values from ctx before each logged line.
func WithContextFunc(withFunc func(context.Context, zerolog.Context) zerolog.Context) option {
	return func(logger *Logger) {
		logger.withFunc = withFunc
	}
}

// WithoutModule disables adding module:neo4rs to the default logger context.
func WithoutModule() option {
	return func(logger *Logger) {
		logger.skipModule = true
	}
}

func NewLogger(logger zerolog.Logger, options ...option) *Logger {
	l := Logger{logger: logger}
	l.init(options)
	return &l
}

// NewContextLogger extracts the zerolog.Logger from ctx via zerolog.Ctx,
// falling back to zerolog.DefaultContextLogger if none is associated.
func NewContextLogger(options ...option) *Logger {
	l := Logger{fromContext: true}
	l.init(options)
	return &l
}

func (pl *Logger) init(options []option) {
	for _, opt := range options {
		opt(pl)
	}
	if !pl.skipModule {
		pl.logger = pl.logger.With().Str("module", "neo4rs").Logger()
	}
}

func (pl *Logger) Log(ctx context.Context, level log.Level, msg string, data map[string]interface{}) {
	var zlevel zerolog.Level
	switch level {
	case log.LevelNone:
		zlevel = zerolog.NoLevel
	case log.LevelError:
		zlevel = zerolog.ErrorLevel
	case log.LevelWarn:
		zlevel = zerolog.WarnLevel
	case log.LevelInfo:
		zlevel = zerolog.InfoLevel
	case log.LevelDebug, log.LevelTrace:
		zlevel = zerolog.DebugLevel
	default:
		zlevel = zerolog.DebugLevel
	}

	var zctx zerolog.Context
	if pl.fromContext {
		zctx = zerolog.Ctx(ctx).With()
	} else {
		zctx = pl.logger.With()
	}
	if pl.withFunc != nil {
		zctx = pl.withFunc(ctx, zctx)
	}

	logger := zctx.Logger()
	event := logger.WithLevel(zlevel)
	if event.Enabled() {
		if pl.fromContext && !pl.skipModule {
			event.Str("module", "neo4rs")
		}
		event.Fields(data).Msg(msg)
	}
}
