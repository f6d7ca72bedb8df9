package pgadapt_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tim-schilling/pgadapt"
)

// memResult is an in-memory pgadapt.Result.
type memResult struct {
	oids    []uint32
	formats []pgadapt.Format
	rows    [][][]byte
}

func (r *memResult) NumFields() int                     { return len(r.oids) }
func (r *memResult) NumRows() int                       { return len(r.rows) }
func (r *memResult) FieldOID(col int) uint32            { return r.oids[col] }
func (r *memResult) FieldFormat(col int) pgadapt.Format { return r.formats[col] }
func (r *memResult) Value(row, col int) []byte          { return r.rows[row][col] }

func mustConnScope(t testing.TB, connString string) *pgadapt.ConnScope {
	t.Helper()

	config, err := pgadapt.ParseConfig(connString)
	require.NoError(t, err)
	conn, err := pgadapt.NewConnScope(config)
	require.NoError(t, err)
	return conn
}

func mustTransformer(t testing.TB, m *pgadapt.Map, scope pgadapt.Scope) *pgadapt.Transformer {
	t.Helper()

	tx, err := m.NewTransformer(scope)
	require.NoError(t, err)
	return tx
}

// countingDecoderFactory returns a DecoderFactory producing decoders that return value, and a pointer to the number
// of times the factory was called.
func countingDecoderFactory(value any) (pgadapt.DecoderFactory, *int) {
	calls := new(int)
	f := pgadapt.DecoderFactory(func(oid uint32, conn pgadapt.Connection) (pgadapt.ValueDecoder, error) {
		*calls++
		return constDecoder{value: value}, nil
	})
	return f, calls
}

type constDecoder struct {
	value any
}

func (d constDecoder) Decode(src []byte) (any, error) {
	return d.value, nil
}

func constEncodeFunc(data string, oid uint32) pgadapt.EncodeFunc {
	return func(value any) ([]byte, uint32, error) {
		return []byte(data), oid, nil
	}
}

func constDecodeFunc(value any) pgadapt.DecodeFunc {
	return func(src []byte) (any, error) {
		return value, nil
	}
}

// logRecord is a single call captured by testLogger.
type logRecord struct {
	level pgadapt.LogLevel
	msg   string
	data  map[string]any
}

type testLogger struct {
	records []logRecord
}

func (l *testLogger) Log(level pgadapt.LogLevel, msg string, data map[string]any) {
	l.records = append(l.records, logRecord{level: level, msg: msg, data: data})
}

func (l *testLogger) messages() []string {
	msgs := make([]string, len(l.records))
	for i, r := range l.records {
		msgs[i] = r.msg
	}
	return msgs
}
