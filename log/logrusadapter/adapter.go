// Package logrusadapter provides a logger that writes to a github.com/sirupsen/logrus.Logger
// log.
package logrusadapter

import (
	"github.com/sirupsen/logrus"
	"github.com/tim-schilling/pgadapt"
)

type Logger struct {
	l      logrus.FieldLogger
	module bool
}

type option func(logger *Logger)

// WithoutModule disables adding the module=pgadapt field to every entry.
func WithoutModule() option {
	return func(logger *Logger) {
		logger.module = false
	}
}

func NewLogger(l logrus.FieldLogger, options ...option) *Logger {
	logger := &Logger{l: l, module: true}
	for _, opt := range options {
		opt(logger)
	}
	return logger
}

func (l *Logger) Log(level pgadapt.LogLevel, msg string, data map[string]any) {
	fields := make(logrus.Fields, len(data)+1)
	for k, v := range data {
		fields[k] = v
	}
	if l.module {
		fields["module"] = "pgadapt"
	}

	lvl, ok := logrusLevel(level)
	if !ok {
		fields["INVALID_PGADAPT_LOG_LEVEL"] = level
	}
	l.l.WithFields(fields).Log(lvl, msg)
}

// logrusLevel maps level to the logrus level of the same name. logrus has a trace level, so no marker field is
// needed for it.
func logrusLevel(level pgadapt.LogLevel) (logrus.Level, bool) {
	switch level {
	case pgadapt.LogLevelTrace:
		return logrus.TraceLevel, true
	case pgadapt.LogLevelDebug:
		return logrus.DebugLevel, true
	case pgadapt.LogLevelInfo:
		return logrus.InfoLevel, true
	case pgadapt.LogLevelWarn:
		return logrus.WarnLevel, true
	case pgadapt.LogLevelError:
		return logrus.ErrorLevel, true
	default:
		return logrus.ErrorLevel, false
	}
}
