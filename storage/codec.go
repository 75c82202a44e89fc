package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Encode converts a value to the string form written to a backend.
// Strings are stored as-is, booleans and numbers in their natural form, and
// everything else as JSON.
func Encode(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "null", nil
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.Itoa(val), nil
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", val), nil
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val), nil
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), nil
	case json.Number:
		return val.String(), nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return string(b), nil
}

// Decode parses a stored string back into a value.
// Input that is not valid JSON is returned unchanged, since it was stored as a
// plain string. JSON numbers decode to float64.
func Decode(raw string) (any, error) {
	var v any
	err := json.Unmarshal([]byte(raw), &v)
	if err == nil {
		return v, nil
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return raw, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrDecode, err)
}
