package pgadapt

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
)

// Format is the PostgreSQL wire format of a value. The numeric values are the protocol format codes.
type Format int16

const (
	TextFormat   Format = pgtype.TextFormatCode
	BinaryFormat Format = pgtype.BinaryFormatCode
)

func (f Format) String() string {
	switch f {
	case TextFormat:
		return "text"
	case BinaryFormat:
		return "binary"
	default:
		return fmt.Sprintf("invalid format %d", int16(f))
	}
}

func (f Format) valid() bool {
	return f == TextFormat || f == BinaryFormat
}

// InvalidOID is the reserved wire type identifier for "type unknown". The fallback decoders of every Map are
// registered under it.
const InvalidOID uint32 = 0

// PostgreSQL oids for the types the built-in codecs handle. The catalog itself belongs to pgtype.
const (
	BoolOID        uint32 = pgtype.BoolOID
	ByteaOID       uint32 = pgtype.ByteaOID
	CharOID        uint32 = pgtype.QCharOID
	NameOID        uint32 = pgtype.NameOID
	Int8OID        uint32 = pgtype.Int8OID
	Int2OID        uint32 = pgtype.Int2OID
	Int4OID        uint32 = pgtype.Int4OID
	TextOID        uint32 = pgtype.TextOID
	OIDOID         uint32 = pgtype.OIDOID
	JSONOID        uint32 = pgtype.JSONOID
	Float4OID      uint32 = pgtype.Float4OID
	Float8OID      uint32 = pgtype.Float8OID
	UnknownOID     uint32 = pgtype.UnknownOID
	BPCharOID      uint32 = pgtype.BPCharOID
	VarcharOID     uint32 = pgtype.VarcharOID
	DateOID        uint32 = pgtype.DateOID
	TimestampOID   uint32 = pgtype.TimestampOID
	TimestamptzOID uint32 = pgtype.TimestamptzOID
	NumericOID     uint32 = pgtype.NumericOID
	UUIDOID        uint32 = pgtype.UUIDOID
	JSONBOID       uint32 = pgtype.JSONBOID
)
