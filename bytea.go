package pgadapt

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"reflect"

	"github.com/Masterminds/semver/v3"
)

// PostgreSQL 9.0 introduced the hex output format for bytea. Older servers only understand the escape format.
var byteaHexMinVersion = semver.MustParse("9.0.0")

type byteaTextEncoder struct {
	hex bool
}

// newByteaTextEncoder picks the text representation once per Transformer. Without a connection, or when the server
// version is unknown, the hex format is used.
func newByteaTextEncoder(typ reflect.Type, conn Connection) (ValueEncoder, error) {
	e := &byteaTextEncoder{hex: true}
	if conn != nil {
		if v := conn.ServerVersion(); v != nil && v.LessThan(byteaHexMinVersion) {
			e.hex = false
		}
	}
	return e, nil
}

func (e *byteaTextEncoder) Encode(value any) ([]byte, uint32, error) {
	src, ok := value.([]byte)
	if !ok {
		return nil, 0, fmt.Errorf("cannot encode %T as bytea", value)
	}

	if e.hex {
		buf := make([]byte, 2+hex.EncodedLen(len(src)))
		buf[0], buf[1] = '\\', 'x'
		hex.Encode(buf[2:], src)
		return buf, ByteaOID, nil
	}
	return escapeBytea(src), ByteaOID, nil
}

func escapeBytea(src []byte) []byte {
	buf := make([]byte, 0, len(src))
	for _, b := range src {
		switch {
		case b == '\\':
			buf = append(buf, '\\', '\\')
		case b < 0x20 || b > 0x7e:
			buf = append(buf, '\\', '0'+(b>>6), '0'+((b>>3)&7), '0'+(b&7))
		default:
			buf = append(buf, b)
		}
	}
	return buf
}

func encodeByteaBinary(value any) ([]byte, uint32, error) {
	src, ok := value.([]byte)
	if !ok {
		return nil, 0, fmt.Errorf("cannot encode %T as bytea", value)
	}
	return src, ByteaOID, nil
}

func decodeByteaText(src []byte) (any, error) {
	if len(src) >= 2 && src[0] == '\\' && src[1] == 'x' {
		buf := make([]byte, hex.DecodedLen(len(src)-2))
		if _, err := hex.Decode(buf, src[2:]); err != nil {
			return nil, fmt.Errorf("invalid bytea hex format: %w", err)
		}
		return buf, nil
	}
	return unescapeBytea(src)
}

func unescapeBytea(src []byte) ([]byte, error) {
	buf := make([]byte, 0, len(src))
	for i := 0; i < len(src); i++ {
		if src[i] != '\\' {
			buf = append(buf, src[i])
			continue
		}

		switch {
		case i+1 < len(src) && src[i+1] == '\\':
			buf = append(buf, '\\')
			i++
		case i+3 < len(src) && isOctal(src[i+1]) && isOctal(src[i+2]) && isOctal(src[i+3]):
			buf = append(buf, (src[i+1]-'0')<<6|(src[i+2]-'0')<<3|(src[i+3]-'0'))
			i += 3
		default:
			return nil, fmt.Errorf("invalid bytea escape format at offset %d", i)
		}
	}
	return buf, nil
}

func isOctal(b byte) bool {
	return b >= '0' && b <= '7'
}

func decodeByteaBinary(src []byte) (any, error) {
	return bytes.Clone(src), nil
}
