package erp

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Literal renders a scalar as a filter literal.
//
// Strings are single-quoted with embedded quotes doubled, integers and floats
// are written in canonical decimal form, booleans as true/false and time.Time
// as a quoted RFC 3339 timestamp. nil is rejected with ErrNullLiteral since the
// wire protocol's null semantics are unverified.
func Literal(value any) (string, error) {
	if value == nil {
		return "", ErrNullLiteral
	}

	switch typed := value.(type) {
	case string:
		return quote(typed), nil
	case bool:
		return strconv.FormatBool(typed), nil
	case time.Time:
		return quote(typed.Format(time.RFC3339)), nil
	case *time.Time:
		if typed == nil {
			return "", ErrNullLiteral
		}

		return quote(typed.Format(time.RFC3339)), nil
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", ErrNullLiteral
		}

		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.String:
		return quote(rv.String()), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "", fmt.Errorf("%w: %v", ErrInvalidLiteral, f)
		}

		return strconv.FormatFloat(f, 'f', -1, bitSize(rv.Kind())), nil
	case reflect.Struct:
		if t, ok := rv.Interface().(time.Time); ok {
			return quote(t.Format(time.RFC3339)), nil
		}
	}

	return "", fmt.Errorf("%w: unsupported type %T", ErrInvalidLiteral, value)
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func bitSize(kind reflect.Kind) int {
	if kind == reflect.Float32 {
		return 32
	}

	return 64
}

// listValues returns the elements of a slice or array value. []byte is treated
// as a scalar and reported as not a list.
func listValues(value any) ([]any, bool) {
	switch typed := value.(type) {
	case nil:
		return nil, false
	case []any:
		return typed, true
	case []byte:
		return nil, false
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	out := make([]any, rv.Len())
	for i := range rv.Len() {
		out[i] = rv.Index(i).Interface()
	}

	return out, true
}
