package pgadapt

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrConfig is matched by every error caused by a malformed registration or scope.
var ErrConfig = errors.New("invalid adaptation configuration")

// ErrNoAdaptation is matched by every error caused by a value whose type has no encoder in any scope.
var ErrNoAdaptation = errors.New("no adaptation available")

// ConfigError is returned synchronously by registration functions and by NewTransformer when the arguments do not
// describe a valid key, conversion, format or scope.
type ConfigError struct {
	Op     string // e.g. "register encoder"
	Key    string // reflect.Type or oid the operation was about, empty if not applicable
	Format Format
	Scope  string // dynamic type of the scope, empty for global
	Msg    string
}

func (e *ConfigError) Error() string {
	s := e.Op + ": " + e.Msg
	if e.Key != "" {
		s += fmt.Sprintf(" (key %s, format %v", e.Key, e.Format)
		if e.Scope != "" {
			s += ", scope " + e.Scope
		}
		s += ")"
	} else if e.Scope != "" {
		s += " (scope " + e.Scope + ")"
	}
	return s
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// AdaptError occurs when a value cannot be encoded because no encoder is registered for its type and the requested
// format in any of the cursor, connection or global registries.
type AdaptError struct {
	Type   reflect.Type
	Format Format
}

func (e *AdaptError) Error() string {
	return fmt.Sprintf("cannot adapt type %v to format %v", e.Type, e.Format)
}

func (e *AdaptError) Is(target error) bool {
	return target == ErrNoAdaptation
}

// EncodeError wraps a failure returned by an encoder.
type EncodeError struct {
	Type   reflect.Type
	Format Format
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %v as %v: %v", e.Type, e.Format, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// DecodeError wraps a failure returned by a decoder. Col is -1 when the value was not read from a result row.
type DecodeError struct {
	Col    int
	OID    uint32
	Format Format
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Col < 0 {
		return fmt.Sprintf("decode oid %d (%v): %v", e.OID, e.Format, e.Err)
	}
	return fmt.Sprintf("decode column %d oid %d (%v): %v", e.Col, e.OID, e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func scopeName(scope Scope) string {
	if isNilScope(scope) {
		return ""
	}
	return fmt.Sprintf("%T", scope)
}
