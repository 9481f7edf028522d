// Package validate provides the field validators used to check action
// parameters before any command is built from them.
//
// Each validator takes a loosely-typed value as decoded from the
// transport (string, json.Number, bool, []any, or an ordered Object) and
// returns either a normalized value or an *Error naming the reason.
// Apart from PathUnder, which must stat the file, no validator performs I/O.
package validate

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Validator checks a raw parameter value and returns its normalized form.
type Validator interface {
	Validate(raw any) (any, error)
}

// Error describes why a field was rejected.
// Field is filled in by the caller that knows the parameter key.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

// reject builds an *Error with a formatted reason.
func reject(format string, args ...any) error {
	return &Error{Reason: fmt.Sprintf(format, args...)}
}

// Scalar renders a scalar transport value as a string.
// Strings pass through; numbers and booleans use their literal form.
// Anything else (lists, objects, null) is rejected.
func Scalar(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case nil:
		return "", reject("value is null")
	default:
		return "", reject("expected a scalar value, got %T", raw)
	}
}

// String requires raw to be a JSON string.
func String(raw any) (string, error) {
	s, ok := raw.(string)
	if !ok {
		return "", reject("expected a string, got %s", typeName(raw))
	}
	return s, nil
}

// typeName returns a short transport-level name for a value's type.
func typeName(raw any) string {
	switch raw.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case json.Number, int, int64, float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "list"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("%T", raw)
	}
}
