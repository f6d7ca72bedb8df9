package kitlogadapter

import (
	"sort"

	"github.com/go-kit/log"
	kitlevel "github.com/go-kit/log/level"
	"github.com/tim-schilling/pgadapt"
)

type Logger struct {
	l log.Logger
}

func NewLogger(l log.Logger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(level pgadapt.LogLevel, msg string, data map[string]any) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	logger := l.l
	for _, k := range keys {
		logger = log.With(logger, k, data[k])
	}

	switch level {
	case pgadapt.LogLevelTrace:
		logger.Log("PGADAPT_LOG_LEVEL", level, "msg", msg)
	case pgadapt.LogLevelDebug:
		kitlevel.Debug(logger).Log("msg", msg)
	case pgadapt.LogLevelInfo:
		kitlevel.Info(logger).Log("msg", msg)
	case pgadapt.LogLevelWarn:
		kitlevel.Warn(logger).Log("msg", msg)
	case pgadapt.LogLevelError:
		kitlevel.Error(logger).Log("msg", msg)
	default:
		logger.Log("INVALID_PGADAPT_LOG_LEVEL", level, "error", msg)
	}
}
