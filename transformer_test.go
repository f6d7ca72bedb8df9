package pgadapt_test

import (
	"errors"
	"reflect"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tim-schilling/pgadapt"
)

type point struct {
	X, Y int
}

func TestNewTransformerScopes(t *testing.T) {
	t.Parallel()

	m := pgadapt.NewMap()
	conn := mustConnScope(t, "")
	cursor := conn.NewCursor()

	tx := mustTransformer(t, m, nil)
	assert.Nil(t, tx.Connection())
	assert.Nil(t, tx.Cursor())

	tx = mustTransformer(t, m, conn)
	assert.Equal(t, conn, tx.Connection())
	assert.Nil(t, tx.Cursor())

	tx = mustTransformer(t, m, cursor)
	assert.Equal(t, conn, tx.Connection())
	assert.Equal(t, cursor, tx.Cursor())

	_, err := m.NewTransformer(bareScope{registry: pgadapt.NewRegistry()})
	require.ErrorIs(t, err, pgadapt.ErrConfig)
}

func TestTransformerDecoderPrecedence(t *testing.T) {
	t.Parallel()

	m := pgadapt.NewEmptyMap()
	conn := mustConnScope(t, "")
	cursor := conn.NewCursor()

	require.NoError(t, m.RegisterDecoder(pgadapt.Int4OID, constDecodeFunc("global"), nil))
	require.NoError(t, m.RegisterDecoder(pgadapt.Int4OID, constDecodeFunc("connection"), conn))
	require.NoError(t, m.RegisterDecoder(pgadapt.Int4OID, constDecodeFunc("cursor"), cursor))

	decode := func(scope pgadapt.Scope) any {
		v, err := mustTransformer(t, m, scope).Decode([]byte("1"), pgadapt.Int4OID, pgadapt.TextFormat)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "cursor", decode(cursor))
	assert.Equal(t, "connection", decode(conn))
	assert.Equal(t, "global", decode(nil))

	key := pgadapt.OIDKey{OID: pgadapt.Int4OID, Format: pgadapt.TextFormat}

	cursor.Registry().RemoveDecoder(key)
	assert.Equal(t, "connection", decode(cursor))

	conn.Registry().RemoveDecoder(key)
	assert.Equal(t, "global", decode(cursor))

	m.Registry().RemoveDecoder(key)
	assert.Equal(t, "1", decode(cursor))
}

func TestTransformerEncoderPrecedence(t *testing.T) {
	t.Parallel()

	m := pgadapt.NewEmptyMap()
	conn := mustConnScope(t, "")
	cursor := conn.NewCursor()
	typ := reflect.TypeFor[point]()

	require.NoError(t, m.RegisterBinaryEncoder(typ, constEncodeFunc("global", 600), nil))
	require.NoError(t, m.RegisterBinaryEncoder(typ, constEncodeFunc("connection", 600), conn))
	require.NoError(t, m.RegisterBinaryEncoder(typ, constEncodeFunc("cursor", 600), cursor))

	encode := func(scope pgadapt.Scope) string {
		data, oid, err := mustTransformer(t, m, scope).Encode(point{1, 2}, pgadapt.BinaryFormat)
		require.NoError(t, err)
		assert.EqualValues(t, 600, oid)
		return string(data)
	}

	assert.Equal(t, "cursor", encode(cursor))
	assert.Equal(t, "connection", encode(conn))
	assert.Equal(t, "global", encode(nil))

	key := pgadapt.TypeKey{Type: typ, Format: pgadapt.BinaryFormat}
	cursor.Registry().RemoveEncoder(key)
	assert.Equal(t, "connection", encode(cursor))
	conn.Registry().RemoveEncoder(key)
	assert.Equal(t, "global", encode(cursor))
	m.Registry().RemoveEncoder(key)

	_, _, err := mustTransformer(t, m, cursor).Encode(point{1, 2}, pgadapt.BinaryFormat)
	require.ErrorIs(t, err, pgadapt.ErrNoAdaptation)
}

func TestTransformerConnectionRegistrationIsInvisibleToOtherConnections(t *testing.T) {
	t.Parallel()

	m := pgadapt.NewEmptyMap()
	conn1 := mustConnScope(t, "")
	conn2 := mustConnScope(t, "")

	require.NoError(t, m.RegisterDecoder(pgadapt.Int4OID, constDecodeFunc(42), conn1))

	v, err := mustTransformer(t, m, conn1.NewCursor()).Decode([]byte("1"), pgadapt.Int4OID, pgadapt.TextFormat)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = mustTransformer(t, m, conn2).Decode([]byte("1"), pgadapt.Int4OID, pgadapt.TextFormat)
	require.NoError(t, err)
	assert.Equal(t, "1", v)
}

func TestTransformerEncodeFuncCaching(t *testing.T) {
	t.Parallel()

	m := pgadapt.NewEmptyMap()
	var calls int
	factory := pgadapt.EncoderFactory(func(typ reflect.Type, conn pgadapt.Connection) (pgadapt.ValueEncoder, error) {
		calls++
		assert.Equal(t, reflect.TypeFor[point](), typ)
		return pointEncoder{}, nil
	})
	require.NoError(t, m.RegisterEncoder(reflect.TypeFor[point](), factory, nil))

	tx := mustTransformer(t, m, nil)
	for i := 0; i < 3; i++ {
		f, err := tx.EncodeFunc(reflect.TypeFor[point](), pgadapt.TextFormat)
		require.NoError(t, err)

		data, oid, err := f(point{X: i, Y: 2})
		require.NoError(t, err)
		assert.Equal(t, "("+strconv.Itoa(i)+",2)", string(data))
		assert.EqualValues(t, 600, oid)
	}
	assert.Equal(t, 1, calls)

	// A different Transformer constructs its own instance.
	_, err := mustTransformer(t, m, nil).EncodeFunc(reflect.TypeFor[point](), pgadapt.TextFormat)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

type pointEncoder struct{}

func (pointEncoder) Encode(value any) ([]byte, uint32, error) {
	p := value.(point)
	return []byte("(" + strconv.Itoa(p.X) + "," + strconv.Itoa(p.Y) + ")"), 600, nil
}

func TestTransformerCachesResolutionAcrossRegistryChanges(t *testing.T) {
	t.Parallel()

	m := pgadapt.NewEmptyMap()
	require.NoError(t, m.RegisterDecoder(pgadapt.Int4OID, constDecodeFunc("before"), nil))

	tx := mustTransformer(t, m, nil)
	v, err := tx.Decode([]byte("1"), pgadapt.Int4OID, pgadapt.TextFormat)
	require.NoError(t, err)
	assert.Equal(t, "before", v)

	require.NoError(t, m.RegisterDecoder(pgadapt.Int4OID, constDecodeFunc("after"), nil))

	v, err = tx.Decode([]byte("1"), pgadapt.Int4OID, pgadapt.TextFormat)
	require.NoError(t, err)
	assert.Equal(t, "before", v)

	v, err = mustTransformer(t, m, nil).Decode([]byte("1"), pgadapt.Int4OID, pgadapt.TextFormat)
	require.NoError(t, err)
	assert.Equal(t, "after", v)
}

func TestTransformerFactoryErrorIsNotCached(t *testing.T) {
	t.Parallel()

	m := pgadapt.NewEmptyMap()
	fail := true
	factory := pgadapt.DecoderFactory(func(oid uint32, conn pgadapt.Connection) (pgadapt.ValueDecoder, error) {
		if fail {
			return nil, errors.New("not yet")
		}
		return constDecoder{value: "ok"}, nil
	})
	require.NoError(t, m.RegisterDecoder(700, factory, nil))

	tx := mustTransformer(t, m, nil)
	_, err := tx.DecodeFunc(700, pgadapt.TextFormat)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not yet")

	fail = false
	f, err := tx.DecodeFunc(700, pgadapt.TextFormat)
	require.NoError(t, err)
	v, err := f([]byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestTransformerEncodeNull(t *testing.T) {
	t.Parallel()

	m := pgadapt.NewEmptyMap()
	tx := mustTransformer(t, m, nil)

	var nilPtr *point
	var nilMap map[string]int
	var nilSlice []byte

	for _, v := range []any{nil, nilPtr, nilMap, nilSlice} {
		for _, format := range []pgadapt.Format{pgadapt.TextFormat, pgadapt.BinaryFormat} {
			data, oid, err := tx.Encode(v, format)
			require.NoError(t, err)
			assert.Nil(t, data)
			assert.Equal(t, pgadapt.TextOID, oid)
		}
	}
}

func TestTransformerDecodeNull(t *testing.T) {
	t.Parallel()

	m := pgadapt.NewEmptyMap()
	require.NoError(t, m.RegisterDecoder(pgadapt.Int4OID, pgadapt.DecodeFunc(func(src []byte) (any, error) {
		t.Fatal("decoder called for NULL")
		return nil, nil
	}), nil))

	tx := mustTransformer(t, m, nil)
	v, err := tx.Decode(nil, pgadapt.Int4OID, pgadapt.TextFormat)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestTransformerEncodeUnknownType(t *testing.T) {
	t.Parallel()

	m := pgadapt.NewMap()
	tx := mustTransformer(t, m, nil)

	_, _, err := tx.Encode(point{1, 2}, pgadapt.BinaryFormat)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pgadapt.ErrNoAdaptation))

	var adaptErr *pgadapt.AdaptError
	require.ErrorAs(t, err, &adaptErr)
	assert.Equal(t, reflect.TypeFor[point](), adaptErr.Type)
	assert.Equal(t, pgadapt.BinaryFormat, adaptErr.Format)
	assert.Contains(t, err.Error(), "pgadapt_test.point")
	assert.Contains(t, err.Error(), "binary")

	// Registering the text format does not help the binary one.
	require.NoError(t, m.RegisterEncoder(reflect.TypeFor[point](), constEncodeFunc("x", 0), nil))
	_, _, err = mustTransformer(t, m, nil).Encode(point{1, 2}, pgadapt.BinaryFormat)
	require.ErrorIs(t, err, pgadapt.ErrNoAdaptation)
}

func TestTransformerEncodeUnknownTypeLogsWarning(t *testing.T) {
	t.Parallel()

	logger := &testLogger{}
	m := pgadapt.NewEmptyMap()
	m.Logger = logger

	_, err := mustTransformer(t, m, nil).EncodeFunc(reflect.TypeFor[point](), pgadapt.TextFormat)
	require.Error(t, err)
	require.Len(t, logger.records, 1)
	assert.Equal(t, pgadapt.LogLevelWarn, logger.records[0].level)
	assert.Equal(t, "no encoder", logger.records[0].msg)
}

func TestTransformerEncodeMissingOIDDefaultsToText(t *testing.T) {
	t.Parallel()

	m := pgadapt.NewEmptyMap()
	require.NoError(t, m.RegisterEncoder(reflect.TypeFor[point](), constEncodeFunc("(1,2)", 0), nil))

	data, oid, err := mustTransformer(t, m, nil).Encode(point{1, 2}, pgadapt.TextFormat)
	require.NoError(t, err)
	assert.Equal(t, []byte("(1,2)"), data)
	assert.Equal(t, pgadapt.TextOID, oid)
}

func TestTransformerEncodeError(t *testing.T) {
	t.Parallel()

	m := pgadapt.NewMap()
	_, _, err := mustTransformer(t, m, nil).Encode(uint64(1<<63), pgadapt.TextFormat)
	require.Error(t, err)

	var encodeErr *pgadapt.EncodeError
	require.ErrorAs(t, err, &encodeErr)
	assert.Equal(t, reflect.TypeFor[uint64](), encodeErr.Type)
	assert.False(t, errors.Is(err, pgadapt.ErrNoAdaptation))
}

func TestTransformerDecodeUnknownOID(t *testing.T) {
	t.Parallel()

	logger := &testLogger{}
	m := pgadapt.NewEmptyMap()
	m.Logger = logger
	m.LogLevel = pgadapt.LogLevelDebug
	tx := mustTransformer(t, m, nil)

	v, err := tx.Decode([]byte("(1,2)"), 600, pgadapt.TextFormat)
	require.NoError(t, err)
	assert.Equal(t, "(1,2)", v)

	v, err = tx.Decode([]byte{0, 1, 2}, 600, pgadapt.BinaryFormat)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2}, v)

	assert.Equal(t, []string{"unknown oid, using fallback decoder", "unknown oid, using fallback decoder"}, logger.messages())

	_, err = tx.Decode([]byte("x"), 600, pgadapt.Format(3))
	require.Error(t, err)
}

func TestTransformerDecodeUnknownOIDCopiesBinary(t *testing.T) {
	t.Parallel()

	tx := mustTransformer(t, pgadapt.NewEmptyMap(), nil)

	src := []byte{1, 2, 3}
	v, err := tx.Decode(src, 600, pgadapt.BinaryFormat)
	require.NoError(t, err)
	src[0] = 9
	assert.Equal(t, []byte{1, 2, 3}, v)
}

func TestTransformerDecodeUnknownOIDUsesClientEncoding(t *testing.T) {
	t.Parallel()

	conn := mustConnScope(t, "client_encoding=LATIN1")
	tx := mustTransformer(t, pgadapt.NewEmptyMap(), conn)

	v, err := tx.Decode([]byte{'c', 0xe9}, 600, pgadapt.TextFormat)
	require.NoError(t, err)
	assert.Equal(t, "cé", v)
}

func TestTransformerDecodeError(t *testing.T) {
	t.Parallel()

	tx := mustTransformer(t, pgadapt.NewMap(), nil)
	_, err := tx.Decode([]byte("abc"), pgadapt.Int4OID, pgadapt.TextFormat)
	require.Error(t, err)

	var decodeErr *pgadapt.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, -1, decodeErr.Col)
	assert.Equal(t, pgadapt.Int4OID, decodeErr.OID)
	assert.Equal(t, pgadapt.TextFormat, decodeErr.Format)
}

func TestTransformerEncodeSequence(t *testing.T) {
	t.Parallel()

	m := pgadapt.NewEmptyMap()
	require.NoError(t, m.RegisterBinaryEncoder(reflect.TypeFor[int](), pgadapt.EncodeFunc(func(value any) ([]byte, uint32, error) {
		return []byte{0, 0, 0, byte(value.(int))}, pgadapt.Int4OID, nil
	}), nil))

	tx := mustTransformer(t, m, nil)
	data, oids, err := tx.EncodeSequence([]any{5, nil}, []pgadapt.Format{pgadapt.BinaryFormat, pgadapt.TextFormat})
	require.NoError(t, err)
	assert.Equal(t, [][]byte{{0, 0, 0, 5}, nil}, data)
	assert.Equal(t, []uint32{pgadapt.Int4OID, pgadapt.TextOID}, oids)

	_, _, err = tx.EncodeSequence([]any{5}, []pgadapt.Format{pgadapt.BinaryFormat, pgadapt.TextFormat})
	require.Error(t, err)

	_, _, err = tx.EncodeSequence([]any{5, point{}}, []pgadapt.Format{pgadapt.BinaryFormat, pgadapt.BinaryFormat})
	require.ErrorIs(t, err, pgadapt.ErrNoAdaptation)
	assert.Contains(t, err.Error(), "encode value 1")
}

func TestTransformerCursorDecoderScenario(t *testing.T) {
	t.Parallel()

	m := pgadapt.NewMap()
	conn := mustConnScope(t, "")
	cursor := conn.NewCursor()

	require.NoError(t, m.RegisterDecoder(pgadapt.Int4OID, pgadapt.DecodeFunc(func(src []byte) (any, error) {
		return strconv.Atoi(string(src))
	}), cursor))

	tx := mustTransformer(t, m, cursor)
	v, err := tx.Decode([]byte("42"), pgadapt.Int4OID, pgadapt.TextFormat)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	result := &memResult{
		oids:    []uint32{pgadapt.Int4OID},
		formats: []pgadapt.Format{pgadapt.TextFormat},
		rows:    [][][]byte{{[]byte("42")}},
	}
	rv, err := tx.DecodeRow(result, 0)
	require.NoError(t, err)
	assert.Same(t, result, tx.Result())
	assert.Equal(t, 1, tx.NumRowDecoders())
	values, err := rv.Values()
	require.NoError(t, err)
	assert.Equal(t, []any{42}, values)

	// The built-in decoder still applies outside the cursor.
	v, err = mustTransformer(t, m, conn).Decode([]byte("42"), pgadapt.Int4OID, pgadapt.TextFormat)
	require.NoError(t, err)
	assert.Equal(t, int32(42), v)
}

func TestTransformerDecodeRow(t *testing.T) {
	t.Parallel()

	m := pgadapt.NewMap()
	tx := mustTransformer(t, m, nil)

	result := &memResult{
		oids:    []uint32{pgadapt.Int4OID, pgadapt.TextOID, 600, pgadapt.BoolOID},
		formats: []pgadapt.Format{pgadapt.TextFormat, pgadapt.TextFormat, pgadapt.BinaryFormat, pgadapt.BinaryFormat},
		rows: [][][]byte{
			{[]byte("1"), []byte("one"), {0xff}, {1}},
			{[]byte("2"), nil, nil, {0}},
		},
	}

	rv, err := tx.DecodeRow(result, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, rv.Len())
	values, err := rv.Values()
	require.NoError(t, err)
	assert.Equal(t, []any{int32(1), "one", []byte{0xff}, true}, values)

	rv, err = tx.DecodeRow(result, 1)
	require.NoError(t, err)
	var cols []int
	for rv.Next() {
		cols = append(cols, rv.Col())
	}
	require.NoError(t, rv.Err())
	assert.Equal(t, []int{0, 1, 2, 3}, cols)
	assert.Equal(t, 4, tx.NumRowDecoders())

	_, err = tx.DecodeRow(result, 2)
	require.Error(t, err)
	_, err = tx.DecodeRow(result, -1)
	require.Error(t, err)
}

func TestTransformerDecodeRowNullsSkipDecoders(t *testing.T) {
	t.Parallel()

	m := pgadapt.NewEmptyMap()
	require.NoError(t, m.RegisterDecoder(pgadapt.Int4OID, pgadapt.DecodeFunc(func(src []byte) (any, error) {
		return nil, errors.New("must not be called")
	}), nil))

	result := &memResult{
		oids:    []uint32{pgadapt.Int4OID, pgadapt.Int4OID},
		formats: []pgadapt.Format{pgadapt.TextFormat, pgadapt.TextFormat},
		rows:    [][][]byte{{nil, nil}},
	}

	rv, err := mustTransformer(t, m, nil).DecodeRow(result, 0)
	require.NoError(t, err)
	values, err := rv.Values()
	require.NoError(t, err)
	assert.Equal(t, []any{nil, nil}, values)
}

func TestTransformerDecodeRowError(t *testing.T) {
	t.Parallel()

	tx := mustTransformer(t, pgadapt.NewMap(), nil)
	result := &memResult{
		oids:    []uint32{pgadapt.Int4OID, pgadapt.Int4OID, pgadapt.Int4OID},
		formats: []pgadapt.Format{pgadapt.TextFormat, pgadapt.TextFormat, pgadapt.TextFormat},
		rows:    [][][]byte{{[]byte("1"), []byte("x"), []byte("3")}},
	}

	rv, err := tx.DecodeRow(result, 0)
	require.NoError(t, err)

	require.True(t, rv.Next())
	assert.Equal(t, int32(1), rv.Value())
	assert.False(t, rv.Next())
	assert.False(t, rv.Next())

	var decodeErr *pgadapt.DecodeError
	require.ErrorAs(t, rv.Err(), &decodeErr)
	assert.Equal(t, 1, decodeErr.Col)
	assert.Equal(t, pgadapt.Int4OID, decodeErr.OID)
}

func TestTransformerSetResultIdentity(t *testing.T) {
	t.Parallel()

	m := pgadapt.NewEmptyMap()
	factory, calls := countingDecoderFactory("x")
	require.NoError(t, m.RegisterDecoder(pgadapt.Int4OID, factory, nil))
	require.NoError(t, m.RegisterDecoder(pgadapt.Int8OID, factory, nil))

	tx := mustTransformer(t, m, nil)
	result := &memResult{
		oids:    []uint32{pgadapt.Int4OID, pgadapt.Int8OID, pgadapt.Int4OID},
		formats: []pgadapt.Format{pgadapt.TextFormat, pgadapt.TextFormat, pgadapt.TextFormat},
		rows:    [][][]byte{{[]byte("1"), []byte("2"), []byte("3")}},
	}

	require.NoError(t, tx.SetResult(result))
	assert.Equal(t, 2, *calls)
	assert.Equal(t, 3, tx.NumRowDecoders())
	assert.Same(t, result, tx.Result())

	require.NoError(t, tx.SetResult(result))
	_, err := tx.DecodeRow(result, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, *calls)

	// An equal but distinct result is rebound. The decoders come from the cache.
	other := &memResult{oids: result.oids, formats: result.formats, rows: result.rows}
	require.NoError(t, tx.SetResult(other))
	assert.Same(t, other, tx.Result())
	assert.Equal(t, 2, *calls)

	require.NoError(t, tx.SetResult(nil))
	assert.Nil(t, tx.Result())
	assert.Equal(t, 0, tx.NumRowDecoders())
}

func TestTransformerSetResultKeepsBindingOnError(t *testing.T) {
	t.Parallel()

	m := pgadapt.NewEmptyMap()
	require.NoError(t, m.RegisterDecoder(pgadapt.Int4OID, pgadapt.DecoderFactory(func(oid uint32, conn pgadapt.Connection) (pgadapt.ValueDecoder, error) {
		return nil, errors.New("broken")
	}), nil))

	tx := mustTransformer(t, m, nil)
	good := &memResult{oids: []uint32{pgadapt.TextOID}, formats: []pgadapt.Format{pgadapt.TextFormat}}
	require.NoError(t, tx.SetResult(good))

	bad := &memResult{
		oids:    []uint32{pgadapt.TextOID, pgadapt.Int4OID},
		formats: []pgadapt.Format{pgadapt.TextFormat, pgadapt.TextFormat},
	}
	err := tx.SetResult(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column 1")
	assert.Same(t, good, tx.Result())
	assert.Equal(t, 1, tx.NumRowDecoders())
}
