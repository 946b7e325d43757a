package validator

import (
	"errors"
	"slices"
	"strings"
)

// ErrInvalid is returned by a CustomFunc to request the generic message.
var ErrInvalid = errors.New("validator: invalid value")

// Translation keys attached to every ValidationError.
const (
	KeyRequired  = "validation.required"
	KeyType      = "validation.type"
	KeyMin       = "validation.min"
	KeyMax       = "validation.max"
	KeyMinLength = "validation.min_length"
	KeyMaxLength = "validation.max_length"
	KeyMinItems  = "validation.min_items"
	KeyMaxItems  = "validation.max_items"
	KeyPattern   = "validation.pattern"
	KeyEnum      = "validation.enum"
	KeyCustom    = "validation.custom"
)

// ValidationError describes one failed rule.
// Field is a path: "profile.contact.phone" for nested objects and
// "items[0].name" for array elements.
type ValidationError struct {
	TranslationValues map[string]any `json:"-"`
	Field             string         `json:"field"`
	Message           string         `json:"message"`
	TranslationKey    string         `json:"-"`
}

func (e ValidationError) Error() string {
	return e.Message
}

// ValidationErrors is the ordered list of failures from one Validate call.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Message
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether any error targets field.
func (e ValidationErrors) Has(field string) bool {
	return slices.ContainsFunc(e, func(v ValidationError) bool {
		return v.Field == field
	})
}

// Fields returns the field paths in error order, one entry per error.
func (e ValidationErrors) Fields() []string {
	fields := make([]string, len(e))
	for i, err := range e {
		fields[i] = err.Field
	}
	return fields
}

// Translate rewrites every message that carries a translation key using fn.
// A nil fn is a no-op.
func (e ValidationErrors) Translate(fn func(key string, values map[string]any) string) {
	if fn == nil {
		return
	}
	for i := range e {
		if e[i].TranslationKey == "" {
			continue
		}
		e[i].Message = fn(e[i].TranslationKey, e[i].TranslationValues)
	}
}

// IsValidationErrors reports whether err is or wraps ValidationErrors.
func IsValidationErrors(err error) bool {
	var ve ValidationErrors
	return errors.As(err, &ve)
}

// ExtractValidationErrors returns the ValidationErrors inside err, or nil.
func ExtractValidationErrors(err error) ValidationErrors {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
