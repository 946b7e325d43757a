package container

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for container operations.
var (
	// ErrNotFound is matched by NotFoundError via errors.Is.
	ErrNotFound = errors.New("container: service not found")

	// ErrTypeMismatch is matched by TypeMismatchError via errors.Is.
	ErrTypeMismatch = errors.New("container: service has unexpected type")

	// ErrCycle is matched by CycleError via errors.Is.
	ErrCycle = errors.New("container: dependency cycle")
)

// NotFoundError is returned when resolving a name that has no binding.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("container: service %q not found", e.Name)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// FactoryError wraps an error returned by a factory.
type FactoryError struct {
	Err  error
	Name string
}

func (e *FactoryError) Error() string {
	return fmt.Sprintf("container: build %q: %v", e.Name, e.Err)
}

func (e *FactoryError) Unwrap() error {
	return e.Err
}

// CycleError is returned when a factory resolves a name that is already
// being built on the same call path. Path lists the chain, ending with the
// repeated name.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("container: dependency cycle %s", strings.Join(e.Path, " -> "))
}

func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}

// TypeMismatchError is returned by the generic helpers when the resolved
// instance cannot be asserted to the requested type.
type TypeMismatchError struct {
	Name string
	Want string
	Got  string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("container: service %q is %s, not %s", e.Name, e.Got, e.Want)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// AsNotFound extracts the NotFoundError from err, or returns nil.
func AsNotFound(err error) *NotFoundError {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf
	}
	return nil
}
