package pgadapt

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/jackc/pgio"
)

type integer interface {
	int | int8 | int16 | int32 | int64 | uint8 | uint16 | uint32
}

// encodeInteger returns an EncodeFunc for Go integers of type T sent as the PostgreSQL integer type oid. The caller
// picks an oid wide enough for every value of T.
func encodeInteger[T integer](oid uint32, format Format) EncodeFunc {
	return func(value any) ([]byte, uint32, error) {
		n, ok := value.(T)
		if !ok {
			return nil, 0, fmt.Errorf("cannot encode %T as oid %d", value, oid)
		}

		if format == TextFormat {
			return strconv.AppendInt(nil, int64(n), 10), oid, nil
		}

		switch oid {
		case Int2OID:
			return pgio.AppendInt16(nil, int16(n)), oid, nil
		case Int4OID:
			return pgio.AppendInt32(nil, int32(n)), oid, nil
		default:
			return pgio.AppendInt64(nil, int64(n)), oid, nil
		}
	}
}

// encodeUint64 sends uint64 as int8, failing for values that do not fit.
func encodeUint64(format Format) EncodeFunc {
	return func(value any) ([]byte, uint32, error) {
		n, ok := value.(uint64)
		if !ok {
			return nil, 0, fmt.Errorf("cannot encode %T as int8", value)
		}
		if n > math.MaxInt64 {
			return nil, 0, fmt.Errorf("%d is greater than maximum value for int8", n)
		}

		if format == TextFormat {
			return strconv.AppendUint(nil, n, 10), Int8OID, nil
		}
		return pgio.AppendInt64(nil, int64(n)), Int8OID, nil
	}
}

func decodeInt2Text(src []byte) (any, error) {
	n, err := strconv.ParseInt(string(src), 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid int2: %w", err)
	}
	return int16(n), nil
}

func decodeInt4Text(src []byte) (any, error) {
	n, err := strconv.ParseInt(string(src), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid int4: %w", err)
	}
	return int32(n), nil
}

func decodeInt8Text(src []byte) (any, error) {
	n, err := strconv.ParseInt(string(src), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid int8: %w", err)
	}
	return n, nil
}

func decodeOIDText(src []byte) (any, error) {
	n, err := strconv.ParseUint(string(src), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid oid: %w", err)
	}
	return uint32(n), nil
}

func decodeInt2Binary(src []byte) (any, error) {
	if len(src) != 2 {
		return nil, fmt.Errorf("invalid length for int2: %v", len(src))
	}
	return int16(binary.BigEndian.Uint16(src)), nil
}

func decodeInt4Binary(src []byte) (any, error) {
	if len(src) != 4 {
		return nil, fmt.Errorf("invalid length for int4: %v", len(src))
	}
	return int32(binary.BigEndian.Uint32(src)), nil
}

func decodeInt8Binary(src []byte) (any, error) {
	if len(src) != 8 {
		return nil, fmt.Errorf("invalid length for int8: %v", len(src))
	}
	return int64(binary.BigEndian.Uint64(src)), nil
}

func decodeOIDBinary(src []byte) (any, error) {
	if len(src) != 4 {
		return nil, fmt.Errorf("invalid length for oid: %v", len(src))
	}
	return binary.BigEndian.Uint32(src), nil
}
