package schema

import (
	"fmt"
	"sort"
)

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Key    string // Field name
	Reason string // Human-readable reason for failure
	Value  any    // The value that failed validation
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("field %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("field %q: %s (got %T)", e.Key, e.Reason, e.Value)
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	if aggr, ok := err.(*AggregateError); ok {
		return aggr.Errors
	}
	return nil
}

// Errors maps an attribute name to its violation messages.
// An empty mapping means valid.
type Errors map[string][]string

// Add records msg against field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Merge appends every message of other.
func (e Errors) Merge(other Errors) {
	for field, msgs := range other {
		e[field] = append(e[field], msgs...)
	}
}

// Empty reports whether no violation was recorded.
func (e Errors) Empty() bool {
	return len(e) == 0
}

// Fields returns the names of the failing attributes in lexical order.
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Full returns "<field> <message>" sentences, ordered by field.
func (e Errors) Full() []string {
	var out []string
	for _, f := range e.Fields() {
		for _, msg := range e[f] {
			out = append(out, f+" "+msg)
		}
	}
	return out
}

// Err converts the mapping to an *AggregateError, or nil when empty.
func (e Errors) Err() error {
	if e.Empty() {
		return nil
	}
	var errs []error
	for _, f := range e.Fields() {
		for _, msg := range e[f] {
			errs = append(errs, &ValidationError{Key: f, Reason: msg})
		}
	}
	return &AggregateError{Errors: errs}
}
