package validator

// Type is the declared type of a field.
type Type string

// Supported field types.
const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
	TypeEmail   Type = "email"
	TypeURL     Type = "url"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
)

// CustomFunc is a user-supplied check for a single value.
// Returning nil passes. A non-empty error message is reported verbatim;
// ErrInvalid or an empty message produces the generic "<field> is invalid".
type CustomFunc func(value any) error

// Rule declares the constraints for one field.
// Zero values mean "no constraint", so only the set fields are checked.
type Rule struct {
	// Custom runs after every other check has passed.
	Custom CustomFunc

	// Min and Max are inclusive bounds for numeric values.
	Min *float64
	Max *float64

	// MinLength and MaxLength bound the rune count of strings and the
	// element count of arrays.
	MinLength *int
	MaxLength *int

	// Schema is the field schema of an object, or the element schema of an array.
	Schema Schema

	Type Type

	// Pattern is a regular expression the whole string value must match.
	Pattern string

	// Enum lists the accepted values. Numbers compare by value.
	Enum []any

	// Required rejects missing, nil and empty string values.
	Required bool
}

// Schema maps field names to their rules.
type Schema map[string]Rule

// Ptr returns a pointer to v. Handy for the Min/Max/MinLength/MaxLength fields.
//
//	validator.Rule{Type: validator.TypeNumber, Min: validator.Ptr(0.0)}
func Ptr[T any](v T) *T {
	return &v
}
