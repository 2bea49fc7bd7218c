package domain

import (
	"encoding/json"
	"reflect"
)

// IsEmpty reports whether v has no enumerable members: nil, empty maps,
// slices, arrays and strings, and any scalar.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.String:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return IsEmpty(rv.Elem().Interface())
	case reflect.Struct:
		return rv.NumField() == 0
	default:
		return true
	}
}

// IsEmptyJSON applies IsEmpty to a raw JSON document. A document that does
// not parse is an error, not an empty record.
func IsEmptyJSON(raw []byte) (bool, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, err
	}
	return IsEmpty(v), nil
}
