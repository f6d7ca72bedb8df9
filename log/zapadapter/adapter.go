// Package zapadapter provides a logger that writes to a go.uber.org/zap.Logger.
package zapadapter

import (
	"sort"

	"github.com/tim-schilling/pgadapt"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	logger *zap.Logger
	module bool
}

type option func(logger *Logger)

// WithoutModule disables adding the module:pgadapt field to every entry.
func WithoutModule() option {
	return func(logger *Logger) {
		logger.module = false
	}
}

// NewLogger returns a pgadapt.Logger writing to logger. Fields are added in key order, so console output is stable.
func NewLogger(logger *zap.Logger, options ...option) *Logger {
	l := &Logger{logger: logger.WithOptions(zap.AddCallerSkip(1)), module: true}
	for _, opt := range options {
		opt(l)
	}
	if l.module {
		l.logger = l.logger.With(zap.String("module", "pgadapt"))
	}
	return l
}

func (pl *Logger) Log(level pgadapt.LogLevel, msg string, data map[string]any) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]zapcore.Field, 0, len(data)+1)
	for _, k := range keys {
		fields = append(fields, zap.Any(k, data[k]))
	}

	switch level {
	case pgadapt.LogLevelTrace:
		pl.logger.Debug(msg, append(fields, zap.Stringer("PGADAPT_LOG_LEVEL", level))...)
	case pgadapt.LogLevelDebug:
		pl.logger.Debug(msg, fields...)
	case pgadapt.LogLevelInfo:
		pl.logger.Info(msg, fields...)
	case pgadapt.LogLevelWarn:
		pl.logger.Warn(msg, fields...)
	case pgadapt.LogLevelError:
		pl.logger.Error(msg, fields...)
	default:
		pl.logger.Error(msg, append(fields, zap.Stringer("INVALID_PGADAPT_LOG_LEVEL", level))...)
	}
}
