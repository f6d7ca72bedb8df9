// Package pgxcodec exposes the codecs of a pgtype.Map as pgadapt encoders and decoders.
//
// It gives a pgadapt.Map access to every type pgx knows (uuid, interval, inet, ranges, arrays and so on) without a
// hand written conversion. Values decode to what the pgtype codec's DecodeValue returns, for example [16]byte for
// uuid and pgtype.Interval for interval. Text values are interpreted as UTF-8 regardless of the client encoding.
package pgxcodec

import (
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tim-schilling/pgadapt"
)

type decoder struct {
	m      *pgtype.Map
	typ    *pgtype.Type
	format int16
}

func (d *decoder) Decode(src []byte) (any, error) {
	return d.typ.Codec.DecodeValue(d.m, d.typ.OID, d.format, src)
}

// DecoderFactory returns a factory of decoders for values in format. The type of each oid is looked up in m once
// per Transformer. An oid m does not know is an error.
func DecoderFactory(m *pgtype.Map, format pgadapt.Format) pgadapt.DecoderFactory {
	return func(oid uint32, conn pgadapt.Connection) (pgadapt.ValueDecoder, error) {
		t, ok := m.TypeForOID(oid)
		if !ok {
			return nil, fmt.Errorf("pgtype has no type for oid %d", oid)
		}
		if !t.Codec.FormatSupported(int16(format)) {
			return nil, fmt.Errorf("pgtype codec for %s does not support %s format", t.Name, format)
		}
		return &decoder{m: m, typ: t, format: int16(format)}, nil
	}
}

// Encoder returns an encoder producing values of type oid in format.
func Encoder(m *pgtype.Map, oid uint32, format pgadapt.Format) pgadapt.EncodeFunc {
	return func(value any) ([]byte, uint32, error) {
		// A non-nil buf keeps empty values apart from NULL.
		buf, err := m.Encode(oid, int16(format), value, []byte{})
		if err != nil {
			return nil, 0, err
		}
		return buf, oid, nil
	}
}

// RegisterDecoders registers decoders for oids in every format the pgtype codec supports.
func RegisterDecoders(am *pgadapt.Map, pm *pgtype.Map, scope pgadapt.Scope, oids ...uint32) error {
	for _, oid := range oids {
		t, ok := pm.TypeForOID(oid)
		if !ok {
			return fmt.Errorf("pgtype has no type for oid %d", oid)
		}

		for _, format := range []pgadapt.Format{pgadapt.TextFormat, pgadapt.BinaryFormat} {
			if !t.Codec.FormatSupported(int16(format)) {
				continue
			}
			if err := am.RegisterDecoderFormat(oid, DecoderFactory(pm, format), scope, format); err != nil {
				return err
			}
		}
	}

	return nil
}

// RegisterEncoder registers encoders turning values of typ into oid in every format the pgtype codec supports.
func RegisterEncoder(am *pgadapt.Map, pm *pgtype.Map, typ reflect.Type, oid uint32, scope pgadapt.Scope) error {
	t, ok := pm.TypeForOID(oid)
	if !ok {
		return fmt.Errorf("pgtype has no type for oid %d", oid)
	}

	for _, format := range []pgadapt.Format{pgadapt.TextFormat, pgadapt.BinaryFormat} {
		if !t.Codec.FormatSupported(int16(format)) {
			continue
		}
		if err := am.RegisterEncoderFormat(typ, Encoder(pm, oid, format), scope, format); err != nil {
			return err
		}
	}

	return nil
}
