package tool

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CoercionError reports a value that could not be converted to a declared
// parameter type.
type CoercionError struct {
	Value  any
	Target ParamType
}

// Error returns a formatted message naming the value and target type.
func (e *CoercionError) Error() string {
	return fmt.Sprintf("tool: cannot coerce %v (%T) to %s", e.Value, e.Value, e.Target)
}

// Coerce converts a decoded JSON value to the declared parameter type.
// It is a pure function enumerating the closed ParamType set; models
// frequently send e.g. "42" for a number or "true" for a boolean, and the
// defined rules recover those cases instead of failing the call.
func Coerce(value any, t ParamType) (any, error) {
	switch t {
	case TypeString:
		return coerceString(value)
	case TypeNumber:
		return coerceNumber(value)
	case TypeBoolean:
		return coerceBool(value)
	case TypeArray:
		return coerceArray(value)
	case TypeObject:
		return coerceObject(value)
	case TypeNull:
		return nil, nil
	default:
		return nil, &CoercionError{Value: value, Target: t}
	}
}

func coerceString(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case nil:
		return "", nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, &CoercionError{Value: value, Target: TypeString}
		}
		return string(data), nil
	}
}

func coerceNumber(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, &CoercionError{Value: value, Target: TypeNumber}
		}
		return f, nil
	case bool:
		if v {
			return float64(1), nil
		}
		return float64(0), nil
	default:
		return nil, &CoercionError{Value: value, Target: TypeNumber}
	}
}

func coerceBool(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes":
			return true, nil
		case "false", "0", "no", "":
			return false, nil
		}
		return nil, &CoercionError{Value: value, Target: TypeBoolean}
	case float64:
		return v != 0, nil
	default:
		return nil, &CoercionError{Value: value, Target: TypeBoolean}
	}
}

func coerceArray(value any) (any, error) {
	switch v := value.(type) {
	case []any:
		return v, nil
	case string:
		trimmed := strings.TrimSpace(v)
		if strings.HasPrefix(trimmed, "[") {
			var arr []any
			if err := json.Unmarshal([]byte(trimmed), &arr); err == nil {
				return arr, nil
			}
		}
		// Comma-separated list becomes an array of trimmed strings.
		if trimmed == "" {
			return []any{}, nil
		}
		parts := strings.Split(trimmed, ",")
		arr := make([]any, len(parts))
		for i, p := range parts {
			arr[i] = strings.TrimSpace(p)
		}
		return arr, nil
	case nil:
		return []any{}, nil
	default:
		// A lone scalar becomes a single-element array.
		return []any{v}, nil
	}
}

func coerceObject(value any) (any, error) {
	switch v := value.(type) {
	case map[string]any:
		return v, nil
	case string:
		var obj map[string]any
		if err := json.Unmarshal([]byte(v), &obj); err != nil {
			return nil, &CoercionError{Value: value, Target: TypeObject}
		}
		return obj, nil
	default:
		return nil, &CoercionError{Value: value, Target: TypeObject}
	}
}
