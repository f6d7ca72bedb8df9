package pgadapt

import (
	"fmt"
	"reflect"
)

// Map is the global adaptation scope. It holds the registry consulted after the cursor and connection registries
// and creates the Transformers that resolve conversions through all three.
//
// A Map is expected to be created and populated once during program setup. It is safe for concurrent use by
// multiple Transformers only after registration has finished.
type Map struct {
	global *Registry

	// Logger receives registration and resolution events. nil disables logging.
	Logger Logger

	// LogLevel is the maximum level that is sent to Logger. The zero value means LogLevelInfo.
	LogLevel LogLevel
}

// NewEmptyMap returns a Map whose global registry only contains the unknown type fallback decoders.
func NewEmptyMap() *Map {
	m := &Map{global: NewRegistry()}
	registerUnknownDecoders(m)
	return m
}

// NewMap returns a Map with the built-in codecs and the unknown type fallback decoders registered.
func NewMap() *Map {
	m := NewEmptyMap()
	registerBuiltins(m)
	return m
}

// Registry returns the global registry.
func (m *Map) Registry() *Registry {
	return m.global
}

// RegisterEncoder registers enc for values of type typ in text format. scope nil means global.
func (m *Map) RegisterEncoder(typ reflect.Type, enc Encoder, scope Scope) error {
	return m.RegisterEncoderFormat(typ, enc, scope, TextFormat)
}

// RegisterBinaryEncoder registers enc for values of type typ in binary format. scope nil means global.
func (m *Map) RegisterBinaryEncoder(typ reflect.Type, enc Encoder, scope Scope) error {
	return m.RegisterEncoderFormat(typ, enc, scope, BinaryFormat)
}

// RegisterEncoderFormat registers enc under (typ, format) in the registry of scope, or in the global registry when
// scope is nil. An existing registration for the same key is replaced.
func (m *Map) RegisterEncoderFormat(typ reflect.Type, enc Encoder, scope Scope, format Format) error {
	const op = "register encoder"
	fail := func(key, msg string) error {
		return &ConfigError{Op: op, Key: key, Format: format, Scope: scopeName(scope), Msg: msg}
	}

	if typ == nil {
		return fail("<nil>", "encoders should be registered on types, got nil")
	}
	if typ.Kind() == reflect.Interface {
		return fail(typ.String(), "encoders should be registered on concrete types, got an interface")
	}
	if !format.valid() {
		return fail(typ.String(), "unknown format")
	}
	if isNilEncoder(enc) {
		return fail(typ.String(), "encoder should be an EncodeFunc or EncoderFactory, got nil")
	}

	reg, err := m.scopeRegistry(op, typ.String(), format, scope)
	if err != nil {
		return err
	}

	if reg.setEncoder(TypeKey{Type: typ, Format: format}, enc) {
		m.log(LogLevelDebug, "encoder replaced", map[string]any{"type": typ.String(), "format": format.String(), "scope": scopeLabel(scope)})
	}
	return nil
}

// RegisterDecoder registers dec for type oid in text format. scope nil means global.
func (m *Map) RegisterDecoder(oid uint32, dec Decoder, scope Scope) error {
	return m.RegisterDecoderFormat(oid, dec, scope, TextFormat)
}

// RegisterBinaryDecoder registers dec for type oid in binary format. scope nil means global.
func (m *Map) RegisterBinaryDecoder(oid uint32, dec Decoder, scope Scope) error {
	return m.RegisterDecoderFormat(oid, dec, scope, BinaryFormat)
}

// RegisterDecoderFormat registers dec under (oid, format) in the registry of scope, or in the global registry when
// scope is nil. An existing registration for the same key is replaced.
func (m *Map) RegisterDecoderFormat(oid uint32, dec Decoder, scope Scope, format Format) error {
	const op = "register decoder"
	key := fmt.Sprintf("oid %d", oid)

	if !format.valid() {
		return &ConfigError{Op: op, Key: key, Format: format, Scope: scopeName(scope), Msg: "unknown format"}
	}
	if isNilDecoder(dec) {
		return &ConfigError{Op: op, Key: key, Format: format, Scope: scopeName(scope), Msg: "decoder should be a DecodeFunc or DecoderFactory, got nil"}
	}

	reg, err := m.scopeRegistry(op, key, format, scope)
	if err != nil {
		return err
	}

	if reg.setDecoder(OIDKey{OID: oid, Format: format}, dec) {
		m.log(LogLevelDebug, "decoder replaced", map[string]any{"oid": oid, "format": format.String(), "scope": scopeLabel(scope)})
	}
	return nil
}

// MustRegisterEncoder registers enc globally under (typ, format) and returns enc unchanged. It panics if the
// registration is invalid. It is intended for package level variable initialization:
//
//	var encodeMoney = m.MustRegisterEncoder(reflect.TypeFor[Money](), pgadapt.TextFormat, pgadapt.EncodeFunc(...))
func (m *Map) MustRegisterEncoder(typ reflect.Type, format Format, enc Encoder) Encoder {
	if err := m.RegisterEncoderFormat(typ, enc, nil, format); err != nil {
		panic(err)
	}
	return enc
}

// MustRegisterDecoder registers dec globally under (oid, format) and returns dec unchanged. It panics if the
// registration is invalid.
func (m *Map) MustRegisterDecoder(oid uint32, format Format, dec Decoder) Decoder {
	if err := m.RegisterDecoderFormat(oid, dec, nil, format); err != nil {
		panic(err)
	}
	return dec
}

func (m *Map) scopeRegistry(op, key string, format Format, scope Scope) (*Registry, error) {
	if isNilScope(scope) {
		return m.global, nil
	}

	switch scope.(type) {
	case Connection, Cursor:
	default:
		return nil, &ConfigError{Op: op, Key: key, Format: format, Scope: scopeName(scope), Msg: "the scope should be a connection or cursor"}
	}

	reg := scope.Registry()
	if reg == nil {
		return nil, &ConfigError{Op: op, Key: key, Format: format, Scope: scopeName(scope), Msg: "scope has no registry"}
	}
	return reg, nil
}

func (m *Map) shouldLog(level LogLevel) bool {
	if m.Logger == nil {
		return false
	}
	maxLevel := m.LogLevel
	if maxLevel == 0 {
		maxLevel = LogLevelInfo
	}
	return maxLevel >= level
}

func (m *Map) log(level LogLevel, msg string, data map[string]any) {
	if !m.shouldLog(level) {
		return
	}
	for k, v := range data {
		data[k] = logValue(v)
	}
	m.Logger.Log(level, msg, data)
}

func scopeLabel(scope Scope) string {
	if isNilScope(scope) {
		return "global"
	}
	if _, ok := scope.(Cursor); ok {
		return "cursor"
	}
	return "connection"
}
