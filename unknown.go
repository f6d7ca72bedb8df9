package pgadapt

import (
	"bytes"
)

// registerUnknownDecoders installs the decoders used for types without any registered decoder. In text format the
// data is returned as a string decoded from the connection's client encoding, or from UTF-8 without a connection. In
// binary format the raw bytes are returned.
func registerUnknownDecoders(m *Map) {
	m.MustRegisterDecoder(InvalidOID, TextFormat, DecoderFactory(newTextDecoder))
	m.MustRegisterDecoder(InvalidOID, BinaryFormat, DecodeFunc(decodeUnknownBinary))
}

func decodeUnknownBinary(src []byte) (any, error) {
	return bytes.Clone(src), nil
}
