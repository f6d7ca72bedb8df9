// Package uuid adapts github.com/gofrs/uuid values to and from the PostgreSQL uuid type.
package uuid

import (
	"fmt"
	"reflect"

	"github.com/gofrs/uuid"
	"github.com/tim-schilling/pgadapt"
)

// Register registers encoders for uuid.UUID and uuid.NullUUID and decoders for the uuid type in scope. A nil scope
// registers globally.
func Register(m *pgadapt.Map, scope pgadapt.Scope) error {
	for _, typ := range []reflect.Type{reflect.TypeFor[uuid.UUID](), reflect.TypeFor[uuid.NullUUID]()} {
		if err := m.RegisterEncoder(typ, pgadapt.EncodeFunc(encodeText), scope); err != nil {
			return err
		}
		if err := m.RegisterBinaryEncoder(typ, pgadapt.EncodeFunc(encodeBinary), scope); err != nil {
			return err
		}
	}

	if err := m.RegisterDecoder(pgadapt.UUIDOID, pgadapt.DecodeFunc(decodeText), scope); err != nil {
		return err
	}
	return m.RegisterBinaryDecoder(pgadapt.UUIDOID, pgadapt.DecodeFunc(decodeBinary), scope)
}

// toUUID returns the UUID held by value. ok is false for an invalid NullUUID.
func toUUID(value any) (u uuid.UUID, ok bool, err error) {
	switch v := value.(type) {
	case uuid.UUID:
		return v, true, nil
	case uuid.NullUUID:
		return v.UUID, v.Valid, nil
	}
	return uuid.Nil, false, fmt.Errorf("cannot encode %T as uuid", value)
}

func encodeText(value any) ([]byte, uint32, error) {
	u, ok, err := toUUID(value)
	if err != nil || !ok {
		return nil, pgadapt.UUIDOID, err
	}
	return []byte(u.String()), pgadapt.UUIDOID, nil
}

func encodeBinary(value any) ([]byte, uint32, error) {
	u, ok, err := toUUID(value)
	if err != nil || !ok {
		return nil, pgadapt.UUIDOID, err
	}
	return u.Bytes(), pgadapt.UUIDOID, nil
}

func decodeText(src []byte) (any, error) {
	return uuid.FromString(string(src))
}

func decodeBinary(src []byte) (any, error) {
	if len(src) != 16 {
		return nil, fmt.Errorf("invalid length for uuid: %v", len(src))
	}
	return uuid.FromBytes(src)
}
