package pgadapt

import (
	"fmt"

	"github.com/goccy/go-json"
)

// JSON wraps a Go value to be sent as PostgreSQL json. The value is marshalled with encoding/json semantics.
type JSON struct {
	Value any
}

// JSONB wraps a Go value to be sent as PostgreSQL jsonb.
type JSONB struct {
	Value any
}

func encodeJSON(value any) ([]byte, uint32, error) {
	j, ok := value.(JSON)
	if !ok {
		return nil, 0, fmt.Errorf("cannot encode %T as json", value)
	}

	buf, err := json.Marshal(j.Value)
	if err != nil {
		return nil, 0, err
	}
	return buf, JSONOID, nil
}

func encodeJSONBText(value any) ([]byte, uint32, error) {
	j, ok := value.(JSONB)
	if !ok {
		return nil, 0, fmt.Errorf("cannot encode %T as jsonb", value)
	}

	buf, err := json.Marshal(j.Value)
	if err != nil {
		return nil, 0, err
	}
	return buf, JSONBOID, nil
}

// The jsonb binary format is the text format preceded by a version byte.
func encodeJSONBBinary(value any) ([]byte, uint32, error) {
	j, ok := value.(JSONB)
	if !ok {
		return nil, 0, fmt.Errorf("cannot encode %T as jsonb", value)
	}

	buf, err := json.Marshal(j.Value)
	if err != nil {
		return nil, 0, err
	}
	return append([]byte{1}, buf...), JSONBOID, nil
}

func decodeJSON(src []byte) (any, error) {
	var v any
	if err := json.Unmarshal(src, &v); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	return v, nil
}

func decodeJSONBBinary(src []byte) (any, error) {
	if len(src) == 0 {
		return nil, fmt.Errorf("jsonb too short")
	}
	if src[0] != 1 {
		return nil, fmt.Errorf("unknown jsonb version number %d", src[0])
	}
	return decodeJSON(src[1:])
}
