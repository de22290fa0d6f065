// Package params normalizes request parameters before they reach the transport.
// Absent values (nil, typed-nil pointers, nil maps, empty slices) are dropped;
// list values bound for the query string are joined with commas.
package params

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// listSeparator joins list-valued query parameters.
const listSeparator = ","

// Values maps a wire parameter name to its value.
// A value may be absent (nil, nil pointer, nil map, empty slice), a scalar,
// a pointer to a scalar, a slice or a map.
type Values map[string]any

// Filter returns a new Values holding only present parameters.
// Non-nil pointers are dereferenced so callers see plain values.
func Filter(v Values) Values {
	out := make(Values, len(v))

	for key, value := range v {
		present, ok := resolve(value)
		if !ok {
			continue
		}

		out[key] = present
	}

	return out
}

// Query filters v and serializes it for a query string.
// Slices become a single comma-joined string in input order.
func Query(v Values) url.Values {
	filtered := Filter(v)
	q := make(url.Values, len(filtered))

	for key, value := range filtered {
		q.Set(key, format(value))
	}

	return q
}

// Body filters v for a JSON request body. Lists stay arrays.
func Body(v Values) map[string]any {
	return Filter(v)
}

// resolve reports whether value is present and returns it with pointers
// dereferenced.
func resolve(value any) (any, bool) {
	if value == nil {
		return nil, false
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}

		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.IsNil() {
			return nil, false
		}
	case reflect.Slice:
		if rv.Len() == 0 {
			return nil, false
		}
	case reflect.Invalid:
		return nil, false
	}

	return rv.Interface(), true
}

// format renders a present value as a query string value.
func format(value any) string {
	rv := reflect.ValueOf(value)

	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range rv.Len() {
			parts[i] = format(rv.Index(i).Interface())
		}

		return strings.Join(parts, listSeparator)
	default:
		return fmt.Sprint(value)
	}
}
