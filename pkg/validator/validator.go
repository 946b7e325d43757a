package validator

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"
)

// Result is the outcome of Validate.
type Result struct {
	Errors ValidationErrors
	Valid  bool
}

// Err returns the errors as an error value, or nil when the data is valid.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return r.Errors
}

// Validate checks data against schema and returns every failure found.
//
// data is expected to be a map with string keys. nil or any other value is
// treated as an empty record. Fields are visited in sorted key order so the
// error list is deterministic. Validate has no side effects beyond calling
// Custom rules and is safe for concurrent use.
func Validate(data any, schema Schema) Result {
	var errs ValidationErrors
	validateRecord(&errs, "", data, schema)
	return Result{Valid: len(errs) == 0, Errors: errs}
}

// ErrInvalidSchema is wrapped by every Schema.Check failure.
var ErrInvalidSchema = errors.New("validator: invalid schema")

// Check reports the first rule that could never be evaluated, currently a
// Pattern that does not compile. Nested schemas are walked too, and the
// error names the field path ("items[].sku"). Routes call it at
// registration so a bad schema fails at startup rather than as a 422.
func (s Schema) Check() error {
	return checkSchema("", s)
}

func checkSchema(prefix string, schema Schema) error {
	keys := make([]string, 0, len(schema))
	for k := range schema {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		rule := schema[key]
		if rule.Pattern != "" {
			if _, err := compileWhole(rule.Pattern); err != nil {
				return fmt.Errorf("%w: %s: pattern %q: %w", ErrInvalidSchema, path, rule.Pattern, err)
			}
		}
		if rule.Schema == nil {
			continue
		}
		if rule.Type == TypeArray {
			path += "[]"
		}
		if err := checkSchema(path, rule.Schema); err != nil {
			return err
		}
	}
	return nil
}

func validateRecord(errs *ValidationErrors, prefix string, data any, schema Schema) {
	rec := asRecord(data)

	keys := make([]string, 0, len(schema))
	for k := range schema {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		value, present := rec.get(key)
		validateField(errs, path, value, present, schema[key])
	}
}

func validateField(errs *ValidationErrors, path string, value any, present bool, rule Rule) {
	if !present || isNil(value) {
		if rule.Required {
			errs.add(path, KeyRequired, path+" is required", nil)
		}
		return
	}

	if rule.Required {
		if s, ok := asString(value); ok && s == "" {
			errs.add(path, KeyRequired, path+" is required", nil)
			return
		}
	}

	if rule.Type != "" && !checkType(rule.Type, value) {
		errs.add(path, KeyType, path+" must be "+typeLabel(rule.Type), map[string]any{"type": string(rule.Type)})
		return
	}

	if n, ok := asNumber(value); ok {
		if rule.Min != nil && n < *rule.Min {
			errs.add(path, KeyMin, fmt.Sprintf("%s must be at least %s", path, formatNumber(*rule.Min)), map[string]any{"min": *rule.Min})
		}
		if rule.Max != nil && n > *rule.Max {
			errs.add(path, KeyMax, fmt.Sprintf("%s must be at most %s", path, formatNumber(*rule.Max)), map[string]any{"max": *rule.Max})
		}
	}

	s, isString := asString(value)
	switch {
	case isString:
		n := utf8.RuneCountInString(s)
		if rule.MinLength != nil && n < *rule.MinLength {
			errs.add(path, KeyMinLength, fmt.Sprintf("%s must be at least %d characters long", path, *rule.MinLength), map[string]any{"min": *rule.MinLength})
		}
		if rule.MaxLength != nil && n > *rule.MaxLength {
			errs.add(path, KeyMaxLength, fmt.Sprintf("%s must not exceed %d characters", path, *rule.MaxLength), map[string]any{"max": *rule.MaxLength})
		}
		if rule.Pattern != "" && !matchWhole(rule.Pattern, s) {
			errs.add(path, KeyPattern, path+" has an invalid format", map[string]any{"pattern": rule.Pattern})
		}
	default:
		if n, ok := seqLen(value); ok {
			if rule.MinLength != nil && n < *rule.MinLength {
				errs.add(path, KeyMinItems, fmt.Sprintf("%s must contain at least %d items", path, *rule.MinLength), map[string]any{"min": *rule.MinLength})
			}
			if rule.MaxLength != nil && n > *rule.MaxLength {
				errs.add(path, KeyMaxItems, fmt.Sprintf("%s must not contain more than %d items", path, *rule.MaxLength), map[string]any{"max": *rule.MaxLength})
			}
		}
	}

	if len(rule.Enum) > 0 && !inEnum(value, rule.Enum) {
		errs.add(path, KeyEnum, path+" must be one of: "+joinEnum(rule.Enum), map[string]any{"values": rule.Enum})
	}

	if rule.Custom != nil {
		if err := rule.Custom(value); err != nil {
			msg := err.Error()
			if errors.Is(err, ErrInvalid) || msg == "" {
				msg = path + " is invalid"
			}
			errs.add(path, KeyCustom, msg, nil)
		}
	}

	if rule.Schema == nil {
		return
	}

	switch rule.Type {
	case TypeObject:
		validateRecord(errs, path, value, rule.Schema)
	case TypeArray:
		forEach(value, func(i int, elem any) {
			validateRecord(errs, path+"["+strconv.Itoa(i)+"]", elem, rule.Schema)
		})
	}
}

func (e *ValidationErrors) add(field, key, message string, values map[string]any) {
	tv := map[string]any{"field": field}
	for k, v := range values {
		tv[k] = v
	}
	*e = append(*e, ValidationError{
		Field:             field,
		Message:           message,
		TranslationKey:    key,
		TranslationValues: tv,
	})
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// patterns memoizes compiled anchored patterns.
var patterns sync.Map

func compileWhole(pattern string) (*regexp.Regexp, error) {
	if v, ok := patterns.Load(pattern); ok {
		return v.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, err
	}
	patterns.Store(pattern, re)
	return re, nil
}

// matchWhole reports whether pattern matches all of s. A pattern that does
// not compile never matches; Schema.Check catches those up front.
func matchWhole(pattern, s string) bool {
	re, err := compileWhole(pattern)
	return err == nil && re.MatchString(s)
}

func typeLabel(t Type) string {
	switch t {
	case TypeString:
		return "a string"
	case TypeNumber:
		return "a number"
	case TypeBoolean:
		return "a boolean"
	case TypeEmail:
		return "a valid email address"
	case TypeURL:
		return "a valid URL"
	case TypeArray:
		return "an array"
	case TypeObject:
		return "an object"
	}
	return "of type " + string(t)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func joinEnum(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}
