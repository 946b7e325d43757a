// Package validator checks loosely typed data, such as a decoded JSON body,
// against a declarative schema.
//
// A [Schema] maps field names to a [Rule]. Each rule can require the field,
// declare its type, bound numbers and lengths, constrain strings with a
// pattern, restrict values to an enum, run a custom check, and describe nested
// objects or array elements with a child schema.
//
//	schema := validator.Schema{
//	    "name":  {Required: true, Type: validator.TypeString, MaxLength: validator.Ptr(64)},
//	    "age":   {Required: true, Type: validator.TypeNumber, Min: validator.Ptr(0.0)},
//	    "email": {Type: validator.TypeEmail},
//	    "tags": {
//	        Type:   validator.TypeArray,
//	        Schema: validator.Schema{"label": {Required: true}},
//	    },
//	}
//
//	res := validator.Validate(body, schema)
//	if !res.Valid {
//	    // res.Errors[0].Field might be "tags[2].label"
//	}
//
// # Rule order
//
// For each field: a missing, nil or empty required value yields a single
// "required" error. A missing or nil optional value passes. A type mismatch
// yields a single type error. Otherwise bounds, length, pattern, enum and the
// custom check run and every failure is reported. Nested schemas are checked
// last.
//
// # Translation
//
// Every [ValidationError] carries a TranslationKey and TranslationValues so
// messages can be localized with [ValidationErrors.Translate].
package validator
