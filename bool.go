package pgadapt

import (
	"fmt"
)

func encodeBoolText(value any) ([]byte, uint32, error) {
	b, ok := value.(bool)
	if !ok {
		return nil, 0, fmt.Errorf("cannot encode %T as bool", value)
	}

	if b {
		return []byte{'t'}, BoolOID, nil
	}
	return []byte{'f'}, BoolOID, nil
}

func encodeBoolBinary(value any) ([]byte, uint32, error) {
	b, ok := value.(bool)
	if !ok {
		return nil, 0, fmt.Errorf("cannot encode %T as bool", value)
	}

	if b {
		return []byte{1}, BoolOID, nil
	}
	return []byte{0}, BoolOID, nil
}

func decodeBoolText(src []byte) (any, error) {
	if len(src) != 1 {
		return nil, fmt.Errorf("invalid length for bool: %v", len(src))
	}

	switch src[0] {
	case 't':
		return true, nil
	case 'f':
		return false, nil
	default:
		return nil, fmt.Errorf("invalid bool: %q", src)
	}
}

func decodeBoolBinary(src []byte) (any, error) {
	if len(src) != 1 {
		return nil, fmt.Errorf("invalid length for bool: %v", len(src))
	}

	return src[0] == 1, nil
}
