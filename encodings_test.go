package pgadapt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tim-schilling/pgadapt"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
)

func TestEncodingForName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		expected encoding.Encoding
	}{
		{"UTF8", unicode.UTF8},
		{"utf-8", unicode.UTF8},
		{"unicode", unicode.UTF8},
		{"SQL_ASCII", encoding.Nop},
		{"latin1", charmap.ISO8859_1},
		{"ISO-8859-1", charmap.ISO8859_1},
		{"LATIN9", charmap.ISO8859_15},
		{"win1252", charmap.Windows1252},
		{"KOI8-R", charmap.KOI8R},
		{"Shift_JIS", japanese.ShiftJIS},
		{"EUC_JP", japanese.EUCJP},
	}

	for _, tt := range tests {
		enc, err := pgadapt.EncodingForName(tt.name)
		require.NoErrorf(t, err, "%s", tt.name)
		assert.Equalf(t, tt.expected, enc, "%s", tt.name)
	}

	_, err := pgadapt.EncodingForName("MULE_INTERNAL")
	require.ErrorIs(t, err, pgadapt.ErrConfig)
	assert.Contains(t, err.Error(), "MULE_INTERNAL")
}

func TestTextRoundTripClientEncodings(t *testing.T) {
	t.Parallel()

	m := pgadapt.NewMap()

	tests := []struct {
		encoding string
		value    string
		wire     []byte
	}{
		{"UTF8", "naïve", []byte("naïve")},
		{"LATIN1", "naïve", []byte{'n', 'a', 0xef, 'v', 'e'}},
		{"WIN1251", "мир", []byte{0xec, 0xe8, 0xf0}},
		{"SQL_ASCII", "plain", []byte("plain")},
	}

	for _, tt := range tests {
		conn := mustConnScope(t, "client_encoding="+tt.encoding)
		tx := mustTransformer(t, m, conn)

		data, oid, err := tx.Encode(tt.value, pgadapt.TextFormat)
		require.NoError(t, err)
		assert.Equal(t, pgadapt.TextOID, oid)
		assert.Equalf(t, tt.wire, data, "%s", tt.encoding)

		v, err := tx.Decode(data, pgadapt.VarcharOID, pgadapt.TextFormat)
		require.NoError(t, err)
		assert.Equalf(t, tt.value, v, "%s", tt.encoding)
	}
}

func TestTextEncodeUnrepresentable(t *testing.T) {
	t.Parallel()

	conn := mustConnScope(t, "client_encoding=LATIN1")
	tx := mustTransformer(t, pgadapt.NewMap(), conn)

	_, _, err := tx.Encode("мир", pgadapt.TextFormat)
	var encodeErr *pgadapt.EncodeError
	require.ErrorAs(t, err, &encodeErr)
}

func TestTextEncodeEmptyStringIsNotNull(t *testing.T) {
	t.Parallel()

	for _, enc := range []string{"UTF8", "LATIN1"} {
		tx := mustTransformer(t, pgadapt.NewMap(), mustConnScope(t, "client_encoding="+enc))
		data, _, err := tx.Encode("", pgadapt.TextFormat)
		require.NoError(t, err)
		assert.NotNil(t, data)
		assert.Empty(t, data)
	}
}
