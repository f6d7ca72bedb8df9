package pgadapt

// Decoder is a conversion from the wire to Go values. It is implemented only by DecodeFunc and DecoderFactory.
type Decoder interface {
	newDecodeFunc(oid uint32, conn Connection) (DecodeFunc, error)
}

// DecodeFunc converts the wire representation src to a Go value. It is never called for SQL NULL. src may be
// retained by the caller after the call returns, so a DecodeFunc that keeps it must copy it.
type DecodeFunc func(src []byte) (any, error)

func (f DecodeFunc) newDecodeFunc(uint32, Connection) (DecodeFunc, error) {
	return f, nil
}

// ValueDecoder is a stateful decoder built by a DecoderFactory.
type ValueDecoder interface {
	Decode(src []byte) (any, error)
}

// DecoderFactory constructs a ValueDecoder for a type oid. It is called at most once per oid and format by each
// Transformer. conn is nil when the Transformer is not bound to a connection.
type DecoderFactory func(oid uint32, conn Connection) (ValueDecoder, error)

func (f DecoderFactory) newDecodeFunc(oid uint32, conn Connection) (DecodeFunc, error) {
	dec, err := f(oid, conn)
	if err != nil {
		return nil, err
	}
	return dec.Decode, nil
}

func isNilDecoder(dec Decoder) bool {
	switch d := dec.(type) {
	case nil:
		return true
	case DecodeFunc:
		return d == nil
	case DecoderFactory:
		return d == nil
	default:
		return true
	}
}
