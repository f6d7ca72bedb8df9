// Package zerologadapter provides a logger that writes to a github.com/rs/zerolog.
package zerologadapter

import (
	"github.com/rs/zerolog"
	"github.com/tim-schilling/pgadapt"
)

type Logger struct {
	logger        zerolog.Logger
	withoutModule zerolog.Logger
}

type option func(logger *Logger)

// WithoutModule disables adding the module:pgadapt field to every log line.
func WithoutModule() option {
	return func(logger *Logger) {
		logger.logger = logger.withoutModule
	}
}

// NewLogger accepts a zerolog.Logger as input and returns a pgadapt.Logger writing to it.
func NewLogger(logger zerolog.Logger, options ...option) *Logger {
	l := &Logger{
		logger:        logger.With().Str("module", "pgadapt").Logger(),
		withoutModule: logger,
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

func (pl *Logger) Log(level pgadapt.LogLevel, msg string, data map[string]any) {
	var zlevel zerolog.Level
	switch level {
	case pgadapt.LogLevelNone:
		zlevel = zerolog.NoLevel
	case pgadapt.LogLevelError:
		zlevel = zerolog.ErrorLevel
	case pgadapt.LogLevelWarn:
		zlevel = zerolog.WarnLevel
	case pgadapt.LogLevelInfo:
		zlevel = zerolog.InfoLevel
	case pgadapt.LogLevelDebug:
		zlevel = zerolog.DebugLevel
	default:
		zlevel = zerolog.DebugLevel
	}

	plog := pl.logger.With().Fields(data).Logger()
	plog.WithLevel(zlevel).Msg(msg)
}
