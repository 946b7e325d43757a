package validator

import (
	"encoding/json"
	"math"
	"net/url"
	"reflect"
)

// record gives uniform read access to string-keyed maps.
type record struct {
	m  map[string]any
	rv reflect.Value
}

func asRecord(data any) record {
	if m, ok := data.(map[string]any); ok {
		return record{m: m}
	}
	if data == nil {
		return record{}
	}
	rv := reflect.ValueOf(data)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String && !rv.IsNil() {
		return record{rv: rv}
	}
	return record{}
}

func (r record) get(key string) (any, bool) {
	if r.m != nil {
		v, ok := r.m[key]
		return v, ok
	}
	if !r.rv.IsValid() {
		return nil, false
	}
	v := r.rv.MapIndex(reflect.ValueOf(key).Convert(r.rv.Type().Key()))
	if !v.IsValid() {
		return nil, false
	}
	return v.Interface(), true
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func asString(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	if _, ok := v.(json.Number); ok {
		return "", false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

// asNumber normalizes every Go numeric kind and json.Number to float64.
// NaN is not a number.
func asNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			f = float64(rv.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			f = float64(rv.Uint())
		case reflect.Float32, reflect.Float64:
			f = rv.Float()
		default:
			return 0, false
		}
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func isBool(v any) bool {
	return reflect.ValueOf(v).Kind() == reflect.Bool
}

// seqLen returns the length of slices and arrays. []byte is not a sequence.
func seqLen(v any) (int, bool) {
	if _, ok := v.([]byte); ok {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Len(), true
	}
	return 0, false
}

func forEach(v any, fn func(i int, elem any)) {
	if _, ok := seqLen(v); !ok {
		return
	}
	rv := reflect.ValueOf(v)
	for i := range rv.Len() {
		fn(i, rv.Index(i).Interface())
	}
}

func isObject(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String
}

func checkType(t Type, v any) bool {
	switch t {
	case TypeString:
		_, ok := asString(v)
		return ok
	case TypeNumber:
		_, ok := asNumber(v)
		return ok
	case TypeBoolean:
		return isBool(v)
	case TypeEmail:
		s, ok := asString(v)
		return ok && emailPattern.MatchString(s)
	case TypeURL:
		s, ok := asString(v)
		if !ok {
			return false
		}
		u, err := url.Parse(s)
		return err == nil && u.IsAbs() && (u.Host != "" || u.Opaque != "")
	case TypeArray:
		_, ok := seqLen(v)
		return ok
	case TypeObject:
		return isObject(v)
	}
	return true
}

// inEnum uses strict equality: same dynamic type and value.
// Numbers compare by value so 30 (int) matches 30.0 decoded from JSON.
func inEnum(v any, enum []any) bool {
	n, isNum := asNumber(v)
	for _, candidate := range enum {
		if isNum {
			if c, ok := asNumber(candidate); ok && c == n {
				return true
			}
			continue
		}
		if candidate == nil || reflect.TypeOf(candidate) != reflect.TypeOf(v) {
			continue
		}
		if reflect.ValueOf(v).Comparable() && candidate == v {
			return true
		}
	}
	return false
}
