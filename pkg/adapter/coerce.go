package adapter

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strconv"
)

// coerce turns a wire value into a route-value primitive by its JSON type:
// strings and booleans as is, numbers as the parameter's numeric kind.
// Objects, arrays and null are dropped.
func coerce(raw json.RawMessage, t reflect.Type) (any, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, false
	}

	switch c := raw[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, false
		}
		return s, true
	case c == 't' || c == 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, false
		}
		return b, true
	case c == '-' || (c >= '0' && c <= '9'):
		return number(string(raw), t)
	}
	return nil, false
}

func number(s string, t reflect.Type) (any, bool) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	kind := reflect.Float64
	if t != nil {
		kind = t.Kind()
	}

	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, t.Bits())
		return n, err == nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, t.Bits())
		return n, err == nil
	case reflect.Float32:
		f, err := strconv.ParseFloat(s, 32)
		return float32(f), err == nil
	default:
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
}
