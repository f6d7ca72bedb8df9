package pgadapt

import (
	"fmt"
	"reflect"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// textCodec converts between Go strings and the client encoding of a connection. Without a connection it uses UTF-8.
type textCodec struct {
	encoding encoding.Encoding
	encoder  *encoding.Encoder
	decoder  *encoding.Decoder
	utf8     bool
}

func newTextCodec(conn Connection) *textCodec {
	var enc encoding.Encoding = unicode.UTF8
	if conn != nil {
		if ce := conn.ClientEncoding(); ce != nil {
			enc = ce
		}
	}

	return &textCodec{
		encoding: enc,
		encoder:  enc.NewEncoder(),
		decoder:  enc.NewDecoder(),
		utf8:     enc == unicode.UTF8 || enc == encoding.Nop,
	}
}

func (c *textCodec) decode(src []byte) (string, error) {
	if c.utf8 && utf8.Valid(src) {
		return string(src), nil
	}

	buf, err := c.decoder.Bytes(src)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

func (c *textCodec) encode(s string) ([]byte, error) {
	if c.utf8 {
		return []byte(s), nil
	}

	buf, err := c.encoder.Bytes([]byte(s))
	if err != nil {
		return nil, err
	}
	if buf == nil {
		buf = []byte{}
	}
	return buf, nil
}

// textEncoder encodes strings in the client encoding. Both formats share the representation.
type textEncoder struct {
	codec *textCodec
}

func newTextEncoder(typ reflect.Type, conn Connection) (ValueEncoder, error) {
	return &textEncoder{codec: newTextCodec(conn)}, nil
}

func (e *textEncoder) Encode(value any) ([]byte, uint32, error) {
	s, ok := value.(string)
	if !ok {
		return nil, 0, fmt.Errorf("cannot encode %T as text", value)
	}

	buf, err := e.codec.encode(s)
	if err != nil {
		return nil, 0, err
	}
	return buf, TextOID, nil
}

// textDecoder decodes text-like types (text, varchar, bpchar, name, "char") from the client encoding.
type textDecoder struct {
	codec *textCodec
}

func newTextDecoder(oid uint32, conn Connection) (ValueDecoder, error) {
	return &textDecoder{codec: newTextCodec(conn)}, nil
}

func (d *textDecoder) Decode(src []byte) (any, error) {
	return d.codec.decode(src)
}
