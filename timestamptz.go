package pgadapt

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgio"
)

const (
	pgTimestamptzHourFormat   = "2006-01-02 15:04:05.999999999Z07"
	pgTimestamptzMinuteFormat = "2006-01-02 15:04:05.999999999Z07:00"
	pgTimestamptzSecondFormat = "2006-01-02 15:04:05.999999999Z07:00:00"
	pgTimestampFormat         = "2006-01-02 15:04:05.999999999"
	pgDateFormat              = "2006-01-02"

	microsecFromUnixEpochToY2K = 946684800 * 1000000

	negativeInfinityMicrosecondOffset = -9223372036854775808
	infinityMicrosecondOffset         = 9223372036854775807
	negativeInfinityDayOffset         = -2147483648
	infinityDayOffset                 = 2147483647
)

// InfinityModifier is returned by the timestamp and date decoders for the special values infinity and -infinity.
type InfinityModifier int8

const (
	Infinity         InfinityModifier = 1
	NegativeInfinity InfinityModifier = -Infinity
)

func (im InfinityModifier) String() string {
	switch im {
	case Infinity:
		return "infinity"
	case NegativeInfinity:
		return "-infinity"
	default:
		return "invalid"
	}
}

func parseInfinity(s string) (InfinityModifier, bool) {
	switch s {
	case "infinity":
		return Infinity, true
	case "-infinity":
		return NegativeInfinity, true
	}
	return 0, false
}

func encodeTimestamptzText(value any) ([]byte, uint32, error) {
	t, ok := value.(time.Time)
	if !ok {
		return nil, 0, fmt.Errorf("cannot encode %T as timestamptz", value)
	}

	t = t.Truncate(time.Microsecond)
	var bc bool
	if t.Year() <= 0 {
		// 0 is 1 BC, -1 is 2 BC, etc.
		bc = true
		t = t.AddDate(-(t.Year()*2 - 1), 0, 0)
	}

	buf := []byte(t.Format(pgTimestamptzSecondFormat))
	if bc {
		buf = append(buf, " BC"...)
	}
	return buf, TimestamptzOID, nil
}

func encodeTimestamptzBinary(value any) ([]byte, uint32, error) {
	t, ok := value.(time.Time)
	if !ok {
		return nil, 0, fmt.Errorf("cannot encode %T as timestamptz", value)
	}

	microsecSinceUnixEpoch := t.Unix()*1000000 + int64(t.Nanosecond())/1000
	return pgio.AppendInt64(nil, microsecSinceUnixEpoch-microsecFromUnixEpochToY2K), TimestamptzOID, nil
}

func decodeTimestamptzText(src []byte) (any, error) {
	s := string(src)
	if im, ok := parseInfinity(s); ok {
		return im, nil
	}

	bc := strings.HasSuffix(s, " BC")
	if bc {
		s = s[:len(s)-3]
	}

	var format string
	switch {
	case len(s) >= 9 && (s[len(s)-9] == '-' || s[len(s)-9] == '+'):
		format = pgTimestamptzSecondFormat
	case len(s) >= 6 && (s[len(s)-6] == '-' || s[len(s)-6] == '+'):
		format = pgTimestamptzMinuteFormat
	default:
		format = pgTimestamptzHourFormat
	}

	t, err := time.Parse(format, s)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamptz: %w", err)
	}
	if bc {
		t = t.AddDate(-2*t.Year()+1, 0, 0)
	}
	return t, nil
}

func decodeTimestampText(src []byte) (any, error) {
	s := string(src)
	if im, ok := parseInfinity(s); ok {
		return im, nil
	}

	bc := strings.HasSuffix(s, " BC")
	if bc {
		s = s[:len(s)-3]
	}

	t, err := time.Parse(pgTimestampFormat, s)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp: %w", err)
	}
	if bc {
		t = t.AddDate(-2*t.Year()+1, 0, 0)
	}
	return t, nil
}

func decodeMicrosecTimestamp(src []byte, loc *time.Location) (any, error) {
	if len(src) != 8 {
		return nil, fmt.Errorf("invalid length for timestamp: %v", len(src))
	}

	microsecSinceY2K := int64(binary.BigEndian.Uint64(src))
	switch microsecSinceY2K {
	case infinityMicrosecondOffset:
		return Infinity, nil
	case negativeInfinityMicrosecondOffset:
		return NegativeInfinity, nil
	}

	microsecSinceUnixEpoch := microsecFromUnixEpochToY2K + microsecSinceY2K
	t := time.Unix(microsecSinceUnixEpoch/1000000, (microsecSinceUnixEpoch%1000000)*1000)
	return t.In(loc), nil
}

func decodeTimestamptzBinary(src []byte) (any, error) {
	return decodeMicrosecTimestamp(src, time.Local)
}

func decodeTimestampBinary(src []byte) (any, error) {
	return decodeMicrosecTimestamp(src, time.UTC)
}

func decodeDateText(src []byte) (any, error) {
	s := string(src)
	if im, ok := parseInfinity(s); ok {
		return im, nil
	}

	bc := strings.HasSuffix(s, " BC")
	if bc {
		s = s[:len(s)-3]
	}

	t, err := time.ParseInLocation(pgDateFormat, s, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}
	if bc {
		t = t.AddDate(-2*t.Year()+1, 0, 0)
	}
	return t, nil
}

func decodeDateBinary(src []byte) (any, error) {
	if len(src) != 4 {
		return nil, fmt.Errorf("invalid length for date: %v", len(src))
	}

	dayOffset := int32(binary.BigEndian.Uint32(src))
	switch dayOffset {
	case infinityDayOffset:
		return Infinity, nil
	case negativeInfinityDayOffset:
		return NegativeInfinity, nil
	}

	return time.Date(2000, 1, int(1+dayOffset), 0, 0, 0, 0, time.UTC), nil
}
