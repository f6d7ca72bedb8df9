// Package numeric adapts github.com/shopspring/decimal values to and from the PostgreSQL numeric type.
//
// decimal.Decimal cannot hold NaN or infinity. Decoding those values is an error.
package numeric

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/tim-schilling/pgadapt"
)

// Register registers encoders for decimal.Decimal and decimal.NullDecimal and decoders for the numeric type in scope.
// A nil scope registers globally.
func Register(m *pgadapt.Map, scope pgadapt.Scope) error {
	for _, typ := range []reflect.Type{reflect.TypeFor[decimal.Decimal](), reflect.TypeFor[decimal.NullDecimal]()} {
		if err := m.RegisterEncoder(typ, pgadapt.EncodeFunc(encodeText), scope); err != nil {
			return err
		}
		if err := m.RegisterBinaryEncoder(typ, pgadapt.EncodeFunc(encodeBinary), scope); err != nil {
			return err
		}
	}

	if err := m.RegisterDecoder(pgadapt.NumericOID, pgadapt.DecodeFunc(decodeText), scope); err != nil {
		return err
	}
	return m.RegisterBinaryDecoder(pgadapt.NumericOID, pgadapt.DecodeFunc(decodeBinary), scope)
}

func toDecimal(value any) (d decimal.Decimal, ok bool, err error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, true, nil
	case decimal.NullDecimal:
		return v.Decimal, v.Valid, nil
	}
	return decimal.Decimal{}, false, fmt.Errorf("cannot encode %T as numeric", value)
}

func encodeText(value any) ([]byte, uint32, error) {
	d, ok, err := toDecimal(value)
	if err != nil || !ok {
		return nil, pgadapt.NumericOID, err
	}
	return []byte(d.String()), pgadapt.NumericOID, nil
}

// The binary numeric layout is produced by pgtype. NumericCodec plans do not use the Map, so none is passed.
func encodeBinary(value any) ([]byte, uint32, error) {
	d, ok, err := toDecimal(value)
	if err != nil || !ok {
		return nil, pgadapt.NumericOID, err
	}

	n := pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
	plan := pgtype.NumericCodec{}.PlanEncode(nil, pgtype.NumericOID, pgtype.BinaryFormatCode, n)
	buf, err := plan.Encode(n, []byte{})
	if err != nil {
		return nil, 0, err
	}
	return buf, pgadapt.NumericOID, nil
}

func decodeText(src []byte) (any, error) {
	return decimal.NewFromString(string(src))
}

func decodeBinary(src []byte) (any, error) {
	v, err := pgtype.NumericCodec{}.DecodeValue(nil, pgtype.NumericOID, pgtype.BinaryFormatCode, src)
	if err != nil {
		return nil, err
	}

	n := v.(pgtype.Numeric)
	if n.NaN {
		return nil, errors.New("cannot decode NaN into decimal.Decimal")
	}
	if n.InfinityModifier != pgtype.Finite {
		return nil, fmt.Errorf("cannot decode %v into decimal.Decimal", n.InfinityModifier)
	}
	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}
