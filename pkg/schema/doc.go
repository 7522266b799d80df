// Package schema provides the field-level typing and validation capability used by steps.
//
// A Field couples an attribute name with a Type and a list of Rules. Types coerce raw
// submitted values (usually strings from a form or a terminal prompt) to their declared
// Go representation; rules then produce human-readable messages keyed by attribute name.
//
// Basic usage:
//
//	fields := []schema.Field{
//	    {Name: "name", Type: schema.String(), Rules: []schema.Rule{schema.Presence()}},
//	    {Name: "age", Type: schema.Int(), Rules: []schema.Rule{schema.Presence(), schema.Min(0)}},
//	}
//
//	age, _ := fields[1].Coerce("35") // 35 (int)
//
//	errs := schema.Validate(fields, map[string]any{"age": age})
//	// errs == schema.Errors{"name": {"can't be blank"}}
//
// Types can be parsed from type strings:
//
//	t, err := schema.ParseType("[int]")
//
// Custom rules are plain functions:
//
//	even := schema.RuleFunc(func(v any) (string, bool) {
//	    i, ok := v.(int)
//	    return "must be even", !ok || i%2 == 0
//	})
//
// Validation failures are data, never errors: an empty Errors mapping means valid.
// Errors.Err converts a mapping to an *AggregateError when a caller needs an error value.
package schema
