// Package normalize turns loosely structured catalog payloads into stable,
// typed track, album and artist records. Every function here is total: bad
// or unexpected input degrades to zero values and empty slices.
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Object is a decoded JSON object.
type Object map[string]any

// AsObject reports whether v is a JSON object and returns it.
func AsObject(v any) (Object, bool) {
	switch m := v.(type) {
	case map[string]any:
		return Object(m), m != nil
	case Object:
		return m, m != nil
	}
	return nil, false
}

// Has reports whether key is present, whatever its value.
func (o Object) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// HasAll reports whether every key is present.
func (o Object) HasAll(keys ...string) bool {
	for _, k := range keys {
		if !o.Has(k) {
			return false
		}
	}
	return true
}

// String returns the string at key, or "" when absent or not a string.
func (o Object) String(key string) string {
	switch v := o[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	}
	return ""
}

// Int returns the integer at key. Numeric strings are accepted.
func (o Object) Int(key string) (int64, bool) {
	return toInt64(o[key])
}

// Float returns the number at key.
func (o Object) Float(key string) (float64, bool) {
	switch v := o[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// Object returns the nested object at key.
func (o Object) Object(key string) (Object, bool) {
	return AsObject(o[key])
}

// List returns the array at key.
func (o Object) List(key string) ([]any, bool) {
	switch v := o[key].(type) {
	case []any:
		return v, true
	case []map[string]any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	}
	return nil, false
}

// Clone returns a shallow copy of o.
func (o Object) Clone() Object {
	out := make(Object, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int64(n), true
	case float32:
		return toInt64(float64(n))
	case int:
		return int64(n), true
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return toInt64(f)
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}

func objects(list []any) []Object {
	out := make([]Object, 0, len(list))
	for _, v := range list {
		if o, ok := AsObject(v); ok {
			out = append(out, o)
		}
	}
	return out
}
