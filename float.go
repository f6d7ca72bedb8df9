package pgadapt

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/jackc/pgio"
)

func formatFloat(f float64, bitSize int) []byte {
	switch {
	case math.IsNaN(f):
		return []byte("NaN")
	case math.IsInf(f, 1):
		return []byte("Infinity")
	case math.IsInf(f, -1):
		return []byte("-Infinity")
	}
	return strconv.AppendFloat(nil, f, 'f', -1, bitSize)
}

func encodeFloat8Text(value any) ([]byte, uint32, error) {
	f, ok := value.(float64)
	if !ok {
		return nil, 0, fmt.Errorf("cannot encode %T as float8", value)
	}
	return formatFloat(f, 64), Float8OID, nil
}

func encodeFloat8Binary(value any) ([]byte, uint32, error) {
	f, ok := value.(float64)
	if !ok {
		return nil, 0, fmt.Errorf("cannot encode %T as float8", value)
	}
	return pgio.AppendUint64(nil, math.Float64bits(f)), Float8OID, nil
}

func encodeFloat4Text(value any) ([]byte, uint32, error) {
	f, ok := value.(float32)
	if !ok {
		return nil, 0, fmt.Errorf("cannot encode %T as float4", value)
	}
	return formatFloat(float64(f), 32), Float4OID, nil
}

func encodeFloat4Binary(value any) ([]byte, uint32, error) {
	f, ok := value.(float32)
	if !ok {
		return nil, 0, fmt.Errorf("cannot encode %T as float4", value)
	}
	return pgio.AppendUint32(nil, math.Float32bits(f)), Float4OID, nil
}

// ParseFloat accepts the NaN, Infinity and -Infinity spellings PostgreSQL produces.
func decodeFloat8Text(src []byte) (any, error) {
	f, err := strconv.ParseFloat(string(src), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid float8: %w", err)
	}
	return f, nil
}

func decodeFloat4Text(src []byte) (any, error) {
	f, err := strconv.ParseFloat(string(src), 32)
	if err != nil {
		return nil, fmt.Errorf("invalid float4: %w", err)
	}
	return float32(f), nil
}

func decodeFloat8Binary(src []byte) (any, error) {
	if len(src) != 8 {
		return nil, fmt.Errorf("invalid length for float8: %v", len(src))
	}
	return math.Float64frombits(binary.BigEndian.Uint64(src)), nil
}

func decodeFloat4Binary(src []byte) (any, error) {
	if len(src) != 4 {
		return nil, fmt.Errorf("invalid length for float4: %v", len(src))
	}
	return math.Float32frombits(binary.BigEndian.Uint32(src)), nil
}
