package internal

import (
	"reflect"
	"strconv"

	"github.com/dumbdev/katal/pkg/container"
)

// ContextValue returns the request value stored under key, or the zero
// value of T when it is missing or of another type.
func ContextValue[T any](c Context, key any) T {
	if v, ok := c.Get(key).(T); ok {
		return v
	}
	var zero T
	return zero
}

// Param returns a typed path parameter. Unparsable values yield the zero value.
func Param[T Scalar](c Context, name string) T {
	v, _ := convertParam[T](c.Param(name))
	return v
}

// Query returns a typed query parameter. Unparsable values yield the zero value.
func Query[T Scalar](c Context, name string) T {
	v, _ := convertParam[T](c.Query(name))
	return v
}

// QueryDefault retrieves a typed query parameter with a default value.
// Returns defaultValue if the parameter is empty or cannot be parsed.
func QueryDefault[T Scalar](c Context, name string, defaultValue T) T {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue
	}
	v, ok := convertParam[T](raw)
	if !ok {
		return defaultValue
	}
	return v
}

// BodyMap returns the parsed body as an object, or nil when the body is
// absent or not a JSON object or form.
func BodyMap(c Context) map[string]any {
	m, _ := c.Body().(map[string]any)
	return m
}

// Service resolves a typed service from the application container.
//
//	users, err := katal.Service[*UserRepo](c, "users")
func Service[T any](c Context, name string) (T, error) {
	return container.Resolve[T](c.Container(), name)
}

// Scalar is the set of types Param and Query convert to, including named
// types such as `type UserID int64`.
type Scalar interface {
	~string | ~int | ~int64 | ~float64 | ~bool
}

// convertParam parses raw into T by T's underlying kind.
func convertParam[T Scalar](raw string) (T, bool) {
	var out T
	v := reflect.ValueOf(&out).Elem()

	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, v.Type().Bits())
		if err != nil {
			return out, false
		}
		v.SetInt(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return out, false
		}
		v.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return out, false
		}
		v.SetBool(b)
	default:
		return out, false
	}
	return out, true
}
