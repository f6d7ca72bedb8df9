package pgadapt

import (
	"fmt"
	"reflect"
)

// Result is a source of result rows, typically one query result buffered by the transport.
type Result interface {
	// NumFields returns the number of columns.
	NumFields() int

	// FieldOID returns the type oid of column col.
	FieldOID(col int) uint32

	// FieldFormat returns the wire format of column col.
	FieldFormat(col int) Format

	// Value returns the raw data of column col in row row. nil means SQL NULL.
	Value(row, col int) []byte
}

// rowCounter is implemented by results that know their row count. DecodeRow uses it to reject out of range rows
// instead of relying on Value to fail.
type rowCounter interface {
	NumRows() int
}

// Transformer adapts values between Go and PostgreSQL for one query. It resolves conversions through the cursor,
// connection and global registries and caches each resolved conversion for its lifetime, so the registries are
// assumed not to change while it is in use.
//
// A Transformer is not safe for concurrent use.
type Transformer struct {
	m      *Map
	conn   Connection
	cursor Cursor

	encodeFuncs map[TypeKey]EncodeFunc
	decodeFuncs map[OIDKey]DecodeFunc

	result      Result
	rowDecoders []DecodeFunc
}

// NewTransformer returns a Transformer bound to scope. scope may be nil, a Connection or a Cursor.
func (m *Map) NewTransformer(scope Scope) (*Transformer, error) {
	conn, cursor, err := solveScope(scope)
	if err != nil {
		return nil, err
	}

	return &Transformer{
		m:           m,
		conn:        conn,
		cursor:      cursor,
		encodeFuncs: make(map[TypeKey]EncodeFunc),
		decodeFuncs: make(map[OIDKey]DecodeFunc),
	}, nil
}

// Connection returns the connection the Transformer is bound to or nil.
func (t *Transformer) Connection() Connection {
	return t.conn
}

// Cursor returns the cursor the Transformer is bound to or nil.
func (t *Transformer) Cursor() Cursor {
	return t.cursor
}

// LookupEncoder finds the encoder registered for (typ, format), trying the cursor, the connection and then the
// global registry. It returns an *AdaptError if no registry has one.
func (t *Transformer) LookupEncoder(typ reflect.Type, format Format) (Encoder, error) {
	key := TypeKey{Type: typ, Format: format}

	for _, reg := range t.registries() {
		if enc, ok := reg.Encoder(key); ok {
			return enc, nil
		}
	}

	return nil, &AdaptError{Type: typ, Format: format}
}

// LookupDecoder finds the decoder registered for (oid, format), trying the cursor, the connection and then the global
// registry. If none has one the global fallback decoder for format is returned.
func (t *Transformer) LookupDecoder(oid uint32, format Format) (Decoder, error) {
	dec, _, err := t.lookupDecoder(oid, format)
	return dec, err
}

func (t *Transformer) lookupDecoder(oid uint32, format Format) (dec Decoder, fallback bool, err error) {
	key := OIDKey{OID: oid, Format: format}

	for _, reg := range t.registries() {
		if dec, ok := reg.Decoder(key); ok {
			return dec, false, nil
		}
	}

	if !format.valid() {
		return nil, false, fmt.Errorf("decode oid %d: unknown format code %d", oid, int16(format))
	}

	dec, ok := t.m.global.Decoder(OIDKey{OID: InvalidOID, Format: format})
	if !ok {
		return nil, false, fmt.Errorf("decode oid %d: no fallback decoder registered for %v format", oid, format)
	}
	return dec, true, nil
}

func (t *Transformer) registries() []*Registry {
	regs := make([]*Registry, 0, 3)
	if t.cursor != nil {
		if r := t.cursor.Registry(); r != nil {
			regs = append(regs, r)
		}
	}
	if t.conn != nil {
		if r := t.conn.Registry(); r != nil {
			regs = append(regs, r)
		}
	}
	return append(regs, t.m.global)
}

// EncodeFunc returns the function encoding values of type typ in format. The first call for a key resolves the
// encoder and, for an EncoderFactory, constructs it. Later calls return the cached function.
func (t *Transformer) EncodeFunc(typ reflect.Type, format Format) (EncodeFunc, error) {
	key := TypeKey{Type: typ, Format: format}
	if f, ok := t.encodeFuncs[key]; ok {
		return f, nil
	}

	enc, err := t.LookupEncoder(typ, format)
	if err != nil {
		if t.m.shouldLog(LogLevelWarn) {
			t.m.log(LogLevelWarn, "no encoder", map[string]any{"type": fmt.Sprint(typ), "format": format.String()})
		}
		return nil, err
	}

	f, err := enc.newEncodeFunc(typ, t.conn)
	if err != nil {
		return nil, fmt.Errorf("construct encoder for %v (%v): %w", typ, format, err)
	}

	if t.m.shouldLog(LogLevelTrace) {
		t.m.log(LogLevelTrace, "encoder resolved", map[string]any{"type": typ.String(), "format": format.String()})
	}

	t.encodeFuncs[key] = f
	return f, nil
}

// DecodeFunc returns the function decoding data of type oid in format. The first call for a key resolves the decoder
// and, for a DecoderFactory, constructs it. Later calls return the cached function. An oid without decoder resolves to
// the fallback decoder rather than failing.
func (t *Transformer) DecodeFunc(oid uint32, format Format) (DecodeFunc, error) {
	key := OIDKey{OID: oid, Format: format}
	if f, ok := t.decodeFuncs[key]; ok {
		return f, nil
	}

	dec, fallback, err := t.lookupDecoder(oid, format)
	if err != nil {
		return nil, err
	}

	f, err := dec.newDecodeFunc(oid, t.conn)
	if err != nil {
		return nil, fmt.Errorf("construct decoder for oid %d (%v): %w", oid, format, err)
	}

	if fallback {
		if t.m.shouldLog(LogLevelDebug) {
			t.m.log(LogLevelDebug, "unknown oid, using fallback decoder", map[string]any{"oid": oid, "format": format.String()})
		}
	} else if t.m.shouldLog(LogLevelTrace) {
		t.m.log(LogLevelTrace, "decoder resolved", map[string]any{"oid": oid, "format": format.String()})
	}

	t.decodeFuncs[key] = f
	return f, nil
}

// Encode converts value to format. A nil value, including a nil pointer, map or slice, is SQL NULL and encodes to
// (nil, TextOID) without consulting any encoder. An encoder that does not report an oid gets TextOID.
func (t *Transformer) Encode(value any, format Format) ([]byte, uint32, error) {
	if isNilValue(value) {
		return nil, TextOID, nil
	}

	typ := reflect.TypeOf(value)
	f, err := t.EncodeFunc(typ, format)
	if err != nil {
		return nil, 0, err
	}

	data, oid, err := f(value)
	if err != nil {
		return nil, 0, &EncodeError{Type: typ, Format: format, Err: err}
	}
	if oid == 0 {
		oid = TextOID
	}
	return data, oid, nil
}

// EncodeSequence encodes each value in the format at the same index of formats. It returns the encoded data, with nil
// for NULL, and the oid of each value.
func (t *Transformer) EncodeSequence(values []any, formats []Format) ([][]byte, []uint32, error) {
	if len(values) != len(formats) {
		return nil, nil, fmt.Errorf("encode sequence: %d values but %d formats", len(values), len(formats))
	}

	out := make([][]byte, len(values))
	oids := make([]uint32, len(values))
	for i, v := range values {
		data, oid, err := t.Encode(v, formats[i])
		if err != nil {
			return nil, nil, fmt.Errorf("encode value %d: %w", i, err)
		}
		out[i] = data
		oids[i] = oid
	}

	return out, oids, nil
}

// Result returns the result currently bound to the Transformer.
func (t *Transformer) Result() Result {
	return t.result
}

// NumRowDecoders returns the number of column decoders prepared for the bound result.
func (t *Transformer) NumRowDecoders() int {
	return len(t.rowDecoders)
}

// SetResult binds result to the Transformer and prepares one decoder per column. Binding the result that is already
// bound does nothing. If a decoder cannot be prepared the previous binding is kept. A nil result clears the binding.
func (t *Transformer) SetResult(result Result) error {
	if result == nil {
		t.result = nil
		t.rowDecoders = nil
		return nil
	}
	if sameResult(t.result, result) {
		return nil
	}

	n := result.NumFields()
	decoders := make([]DecodeFunc, n)
	for col := 0; col < n; col++ {
		f, err := t.DecodeFunc(result.FieldOID(col), result.FieldFormat(col))
		if err != nil {
			return fmt.Errorf("column %d: %w", col, err)
		}
		decoders[col] = f
	}

	t.result = result
	t.rowDecoders = decoders
	return nil
}

// DecodeRow binds result and returns an iterator over the decoded values of row. Values are decoded one at a time as
// the iterator advances.
func (t *Transformer) DecodeRow(result Result, row int) (*RowValues, error) {
	if err := t.SetResult(result); err != nil {
		return nil, err
	}

	if rc, ok := result.(rowCounter); ok {
		if row < 0 || row >= rc.NumRows() {
			return nil, fmt.Errorf("row %d out of range [0, %d)", row, rc.NumRows())
		}
	}

	return &RowValues{
		result:   result,
		row:      row,
		decoders: t.rowDecoders,
		col:      -1,
	}, nil
}

// Decode converts src of type oid in format to a Go value. A nil src is SQL NULL and decodes to nil without
// consulting any decoder.
func (t *Transformer) Decode(src []byte, oid uint32, format Format) (any, error) {
	if src == nil {
		return nil, nil
	}

	f, err := t.DecodeFunc(oid, format)
	if err != nil {
		return nil, err
	}

	v, err := f(src)
	if err != nil {
		return nil, &DecodeError{Col: -1, OID: oid, Format: format, Err: err}
	}
	return v, nil
}

// sameResult reports whether a and b are the same result. Results are compared by identity, so only pointer-like
// dynamic types can ever be the same.
func sameResult(a, b Result) bool {
	if a == nil || b == nil {
		return false
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) {
		return false
	}
	switch ta.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
	}
	return false
}

func isNilValue(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice:
		return v.IsNil()
	}
	return false
}
