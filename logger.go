package pgadapt

import (
	"encoding/hex"
	"errors"
	"fmt"
	"unicode/utf8"
)

// LogLevel represents the pgadapt logging level. See LogLevel* constants for possible values.
type LogLevel int

// The values for log levels are chosen such that the zero value means that no
// log level was specified and we can default to LogLevelInfo.
const (
	LogLevelTrace = LogLevel(6)
	LogLevelDebug = LogLevel(5)
	LogLevelInfo  = LogLevel(4)
	LogLevelWarn  = LogLevel(3)
	LogLevelError = LogLevel(2)
	LogLevelNone  = LogLevel(1)
)

func (ll LogLevel) String() string {
	switch ll {
	case LogLevelTrace:
		return "trace"
	case LogLevelDebug:
		return "debug"
	case LogLevelInfo:
		return "info"
	case LogLevelWarn:
		return "warn"
	case LogLevelError:
		return "error"
	case LogLevelNone:
		return "none"
	default:
		return fmt.Sprintf("invalid level %d", ll)
	}
}

// Logger is the interface used to get log output from pgadapt.
type Logger interface {
	// Log a message at the given level with data key/value pairs. data may be nil.
	Log(level LogLevel, msg string, data map[string]any)
}

// LoggerFunc is a wrapper around a function to satisfy the Logger interface.
type LoggerFunc func(level LogLevel, msg string, data map[string]any)

// Log delegates the logging request to the wrapped function.
func (f LoggerFunc) Log(level LogLevel, msg string, data map[string]any) {
	f(level, msg, data)
}

// LogLevelFromString converts log level string to constant
//
// Valid levels:
//
//	trace
//	debug
//	info
//	warn
//	error
//	none
func LogLevelFromString(s string) (LogLevel, error) {
	switch s {
	case "trace":
		return LogLevelTrace, nil
	case "debug":
		return LogLevelDebug, nil
	case "info":
		return LogLevelInfo, nil
	case "warn":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	case "none":
		return LogLevelNone, nil
	default:
		return 0, errors.New("invalid log level")
	}
}

// logValue shortens byte and string payloads so a log line never carries a whole column value.
func logValue(v any) any {
	switch v := v.(type) {
	case []byte:
		if len(v) < 64 {
			return hex.EncodeToString(v)
		}
		return fmt.Sprintf("%x (truncated %d bytes)", v[:64], len(v)-64)
	case string:
		if len(v) > 64 {
			l := 0
			for w := 0; l < 64; l += w {
				_, w = utf8.DecodeRuneInString(v[l:])
			}
			if len(v) > l {
				return fmt.Sprintf("%s (truncated %d bytes)", v[:l], len(v)-l)
			}
		}
	}
	return v
}
