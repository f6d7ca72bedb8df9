// Package apdnumeric adapts github.com/cockroachdb/apd decimals to and from the PostgreSQL numeric type. Unlike
// shopspring-numeric it carries NaN and infinity through.
package apdnumeric

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/cockroachdb/apd"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tim-schilling/pgadapt"
)

// Register registers encoders for apd.Decimal and *apd.Decimal and decoders for the numeric type in scope. Decoded
// values are *apd.Decimal. A nil scope registers globally.
func Register(m *pgadapt.Map, scope pgadapt.Scope) error {
	for _, typ := range []reflect.Type{reflect.TypeFor[apd.Decimal](), reflect.TypeFor[*apd.Decimal]()} {
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

func toDecimal(value any) (*apd.Decimal, error) {
	switch v := value.(type) {
	case *apd.Decimal:
		return v, nil
	case apd.Decimal:
		return &v, nil
	}
	return nil, fmt.Errorf("cannot encode %T as numeric", value)
}

func encodeText(value any) ([]byte, uint32, error) {
	d, err := toDecimal(value)
	if err != nil {
		return nil, 0, err
	}

	switch d.Form {
	case apd.NaN, apd.NaNSignaling:
		return []byte("NaN"), pgadapt.NumericOID, nil
	}
	return []byte(d.Text('f')), pgadapt.NumericOID, nil
}

func encodeBinary(value any) ([]byte, uint32, error) {
	d, err := toDecimal(value)
	if err != nil {
		return nil, 0, err
	}

	n := pgtype.Numeric{Valid: true}
	switch d.Form {
	case apd.NaN, apd.NaNSignaling:
		n.NaN = true
	case apd.Infinite:
		n.InfinityModifier = pgtype.Infinity
		if d.Negative {
			n.InfinityModifier = pgtype.NegativeInfinity
		}
	default:
		n.Int = new(big.Int).Set(&d.Coeff)
		if d.Negative {
			n.Int.Neg(n.Int)
		}
		n.Exp = d.Exponent
	}

	plan := pgtype.NumericCodec{}.PlanEncode(nil, pgtype.NumericOID, pgtype.BinaryFormatCode, n)
	buf, err := plan.Encode(n, []byte{})
	if err != nil {
		return nil, 0, err
	}
	return buf, pgadapt.NumericOID, nil
}

func decodeText(src []byte) (any, error) {
	d, _, err := apd.NewFromString(string(src))
	if err != nil {
		return nil, err
	}
	return d, nil
}

func decodeBinary(src []byte) (any, error) {
	v, err := pgtype.NumericCodec{}.DecodeValue(nil, pgtype.NumericOID, pgtype.BinaryFormatCode, src)
	if err != nil {
		return nil, err
	}

	n := v.(pgtype.Numeric)
	d := &apd.Decimal{}
	switch {
	case n.NaN:
		d.Form = apd.NaN
	case n.InfinityModifier != pgtype.Finite:
		d.Form = apd.Infinite
		d.Negative = n.InfinityModifier == pgtype.NegativeInfinity
	default:
		d.Coeff.Abs(n.Int)
		d.Negative = n.Int.Sign() < 0
		d.Exponent = n.Exp
	}
	return d, nil
}
