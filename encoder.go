package pgadapt

import (
	"reflect"
)

// Encoder is a conversion from Go values to the wire. It is implemented only by EncodeFunc and EncoderFactory.
type Encoder interface {
	newEncodeFunc(typ reflect.Type, conn Connection) (EncodeFunc, error)
}

// EncodeFunc converts value to its wire representation. A nil data signals SQL NULL, so encoders of empty values
// must return a non-nil empty slice. oid may be 0, in which case TextOID is assumed.
type EncodeFunc func(value any) (data []byte, oid uint32, err error)

func (f EncodeFunc) newEncodeFunc(reflect.Type, Connection) (EncodeFunc, error) {
	return f, nil
}

// ValueEncoder is a stateful encoder built by an EncoderFactory.
type ValueEncoder interface {
	Encode(value any) (data []byte, oid uint32, err error)
}

// EncoderFactory constructs a ValueEncoder for a Go type. It is called at most once per type and format by each
// Transformer, which allows the encoder to do setup work such as looking at the connection's client encoding. conn
// is nil when the Transformer is not bound to a connection.
type EncoderFactory func(typ reflect.Type, conn Connection) (ValueEncoder, error)

func (f EncoderFactory) newEncodeFunc(typ reflect.Type, conn Connection) (EncodeFunc, error) {
	enc, err := f(typ, conn)
	if err != nil {
		return nil, err
	}
	return enc.Encode, nil
}

func isNilEncoder(enc Encoder) bool {
	switch e := enc.(type) {
	case nil:
		return true
	case EncodeFunc:
		return e == nil
	case EncoderFactory:
		return e == nil
	default:
		return true
	}
}
