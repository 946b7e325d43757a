package container

import (
	"fmt"
	"reflect"
)

// Resolve resolves name and asserts the instance to T.
//
// Example:
//
//	users, err := container.Resolve[*UserService](c, "users")
func Resolve[T any](c *Container, name string) (T, error) {
	var zero T

	v, err := c.Resolve(name)
	if err != nil {
		return zero, err
	}

	t, ok := v.(T)
	if !ok {
		return zero, &TypeMismatchError{
			Name: name,
			Want: reflect.TypeFor[T]().String(),
			Got:  fmt.Sprintf("%T", v),
		}
	}
	return t, nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](c *Container, name string) T {
	v, err := Resolve[T](c, name)
	if err != nil {
		panic(err)
	}
	return v
}

// Value returns a factory that always yields v.
// Registered as a singleton it behaves like a pre-built instance.
func Value(v any) Factory {
	return func(*Container) (any, error) {
		return v, nil
	}
}
