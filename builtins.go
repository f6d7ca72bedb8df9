package pgadapt

import (
	"reflect"
	"time"
)

func registerBuiltins(m *Map) {
	type encoders struct {
		typ    reflect.Type
		text   Encoder
		binary Encoder
	}

	for _, e := range []encoders{
		{reflect.TypeFor[bool](), EncodeFunc(encodeBoolText), EncodeFunc(encodeBoolBinary)},
		{reflect.TypeFor[int](), encodeInteger[int](Int8OID, TextFormat), encodeInteger[int](Int8OID, BinaryFormat)},
		{reflect.TypeFor[int8](), encodeInteger[int8](Int2OID, TextFormat), encodeInteger[int8](Int2OID, BinaryFormat)},
		{reflect.TypeFor[int16](), encodeInteger[int16](Int2OID, TextFormat), encodeInteger[int16](Int2OID, BinaryFormat)},
		{reflect.TypeFor[int32](), encodeInteger[int32](Int4OID, TextFormat), encodeInteger[int32](Int4OID, BinaryFormat)},
		{reflect.TypeFor[int64](), encodeInteger[int64](Int8OID, TextFormat), encodeInteger[int64](Int8OID, BinaryFormat)},
		{reflect.TypeFor[uint8](), encodeInteger[uint8](Int2OID, TextFormat), encodeInteger[uint8](Int2OID, BinaryFormat)},
		{reflect.TypeFor[uint16](), encodeInteger[uint16](Int4OID, TextFormat), encodeInteger[uint16](Int4OID, BinaryFormat)},
		{reflect.TypeFor[uint32](), encodeInteger[uint32](Int8OID, TextFormat), encodeInteger[uint32](Int8OID, BinaryFormat)},
		{reflect.TypeFor[uint64](), encodeUint64(TextFormat), encodeUint64(BinaryFormat)},
		{reflect.TypeFor[float32](), EncodeFunc(encodeFloat4Text), EncodeFunc(encodeFloat4Binary)},
		{reflect.TypeFor[float64](), EncodeFunc(encodeFloat8Text), EncodeFunc(encodeFloat8Binary)},
		{reflect.TypeFor[string](), EncoderFactory(newTextEncoder), EncoderFactory(newTextEncoder)},
		{reflect.TypeFor[[]byte](), EncoderFactory(newByteaTextEncoder), EncodeFunc(encodeByteaBinary)},
		{reflect.TypeFor[time.Time](), EncodeFunc(encodeTimestamptzText), EncodeFunc(encodeTimestamptzBinary)},
		{reflect.TypeFor[JSON](), EncodeFunc(encodeJSON), EncodeFunc(encodeJSON)},
		{reflect.TypeFor[JSONB](), EncodeFunc(encodeJSONBText), EncodeFunc(encodeJSONBBinary)},
	} {
		m.MustRegisterEncoder(e.typ, TextFormat, e.text)
		m.MustRegisterEncoder(e.typ, BinaryFormat, e.binary)
	}

	type decoders struct {
		oid    uint32
		text   Decoder
		binary Decoder
	}

	textDecoder := DecoderFactory(newTextDecoder)
	for _, d := range []decoders{
		{BoolOID, DecodeFunc(decodeBoolText), DecodeFunc(decodeBoolBinary)},
		{ByteaOID, DecodeFunc(decodeByteaText), DecodeFunc(decodeByteaBinary)},
		{Int2OID, DecodeFunc(decodeInt2Text), DecodeFunc(decodeInt2Binary)},
		{Int4OID, DecodeFunc(decodeInt4Text), DecodeFunc(decodeInt4Binary)},
		{Int8OID, DecodeFunc(decodeInt8Text), DecodeFunc(decodeInt8Binary)},
		{OIDOID, DecodeFunc(decodeOIDText), DecodeFunc(decodeOIDBinary)},
		{Float4OID, DecodeFunc(decodeFloat4Text), DecodeFunc(decodeFloat4Binary)},
		{Float8OID, DecodeFunc(decodeFloat8Text), DecodeFunc(decodeFloat8Binary)},
		{TextOID, textDecoder, textDecoder},
		{VarcharOID, textDecoder, textDecoder},
		{BPCharOID, textDecoder, textDecoder},
		{NameOID, textDecoder, textDecoder},
		{CharOID, textDecoder, textDecoder},
		{UnknownOID, textDecoder, textDecoder},
		{TimestamptzOID, DecodeFunc(decodeTimestamptzText), DecodeFunc(decodeTimestamptzBinary)},
		{TimestampOID, DecodeFunc(decodeTimestampText), DecodeFunc(decodeTimestampBinary)},
		{DateOID, DecodeFunc(decodeDateText), DecodeFunc(decodeDateBinary)},
		{JSONOID, DecodeFunc(decodeJSON), DecodeFunc(decodeJSON)},
		{JSONBOID, DecodeFunc(decodeJSON), DecodeFunc(decodeJSONBBinary)},
	} {
		m.MustRegisterDecoder(d.oid, TextFormat, d.text)
		m.MustRegisterDecoder(d.oid, BinaryFormat, d.binary)
	}
}
