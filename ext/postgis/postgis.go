// Package postgis adapts github.com/twpayne/go-geom geometries to and from the PostGIS geometry and geography types.
//
// Both formats carry EWKB. The binary format is the raw EWKB, the text format is its hex encoding. Decoded values
// are geom.T.
package postgis

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"reflect"

	"github.com/tim-schilling/pgadapt"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
)

var geometryTypes = []reflect.Type{
	reflect.TypeFor[*geom.Point](),
	reflect.TypeFor[*geom.LineString](),
	reflect.TypeFor[*geom.Polygon](),
	reflect.TypeFor[*geom.MultiPoint](),
	reflect.TypeFor[*geom.MultiLineString](),
	reflect.TypeFor[*geom.MultiPolygon](),
	reflect.TypeFor[*geom.GeometryCollection](),
}

// Register registers encoders for the go-geom geometry types and decoders for oid in scope. The oids of geometry and
// geography are assigned when the extension is created, so the caller looks them up, for example with
// "select 'geometry'::regtype::oid". A nil scope registers globally.
func Register(m *pgadapt.Map, oid uint32, scope pgadapt.Scope) error {
	for _, typ := range geometryTypes {
		if err := m.RegisterEncoder(typ, encodeText(oid), scope); err != nil {
			return err
		}
		if err := m.RegisterBinaryEncoder(typ, encodeBinary(oid), scope); err != nil {
			return err
		}
	}

	if err := m.RegisterDecoder(oid, pgadapt.DecodeFunc(decodeText), scope); err != nil {
		return err
	}
	return m.RegisterBinaryDecoder(oid, pgadapt.DecodeFunc(decodeBinary), scope)
}

func marshal(value any) ([]byte, error) {
	g, ok := value.(geom.T)
	if !ok {
		return nil, fmt.Errorf("cannot encode %T as PostGIS", value)
	}
	return ewkb.Marshal(g, binary.BigEndian)
}

func encodeBinary(oid uint32) pgadapt.EncodeFunc {
	return func(value any) ([]byte, uint32, error) {
		data, err := marshal(value)
		if err != nil {
			return nil, 0, err
		}
		return data, oid, nil
	}
}

func encodeText(oid uint32) pgadapt.EncodeFunc {
	return func(value any) ([]byte, uint32, error) {
		data, err := marshal(value)
		if err != nil {
			return nil, 0, err
		}
		return hex.AppendEncode(nil, data), oid, nil
	}
}

func decodeBinary(src []byte) (any, error) {
	if len(src) < 2 {
		return nil, fmt.Errorf("invalid length for PostGIS: %v", len(src))
	}
	return ewkb.Unmarshal(src)
}

func decodeText(src []byte) (any, error) {
	b, err := hex.DecodeString(string(src))
	if err != nil {
		return nil, err
	}
	return decodeBinary(b)
}
