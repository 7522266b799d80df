package schema

import (
	"fmt"
	"reflect"
	"regexp"
	"unicode/utf8"

	"github.com/mitchellh/mapstructure"
)

// Rule is a single validation check over one attribute value.
// Check returns a human-readable message when the value violates the rule.
type Rule interface {
	Check(value any) (message string, ok bool)
}

// RuleFunc adapts a function into a Rule.
type RuleFunc func(value any) (string, bool)

func (f RuleFunc) Check(value any) (string, bool) { return f(value) }

// IsBlank reports whether value is nil, a whitespace-only string, or an empty slice/map.
func IsBlank(value any) bool {
	if value == nil {
		return true
	}
	if blankString(value) {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	}
	return false
}

type presenceRule struct{}

func (presenceRule) Check(value any) (string, bool) {
	if IsBlank(value) {
		return "can't be blank", false
	}
	return "", true
}

// Presence rejects blank values. It is the only built-in rule that looks at blank values;
// every other rule passes them so that optional attributes can still be constrained.
func Presence() Rule { return presenceRule{} }

type formatRule struct {
	re      *regexp.Regexp
	message string
}

func (r formatRule) Check(value any) (string, bool) {
	if IsBlank(value) {
		return "", true
	}
	if !r.re.MatchString(fmt.Sprint(value)) {
		return r.message, false
	}
	return "", true
}

// Format requires the string form of a value to match pattern.
// An empty message defaults to "is invalid".
func Format(pattern string, message string) (Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid format %q: %w", pattern, err)
	}
	if message == "" {
		message = "is invalid"
	}
	return formatRule{re: re, message: message}, nil
}

// MustFormat is like Format but panics on a bad pattern.
func MustFormat(pattern string, message string) Rule {
	r, err := Format(pattern, message)
	if err != nil {
		panic(err)
	}
	return r
}

type rangeRule struct {
	min, max *float64
}

func (r rangeRule) Check(value any) (string, bool) {
	if IsBlank(value) {
		return "", true
	}
	var f float64
	if err := mapstructure.WeakDecode(value, &f); err != nil {
		return "is not a number", false
	}
	if r.min != nil && f < *r.min {
		return fmt.Sprintf("must be greater than or equal to %v", *r.min), false
	}
	if r.max != nil && f > *r.max {
		return fmt.Sprintf("must be less than or equal to %v", *r.max), false
	}
	return "", true
}

// Range bounds a numeric value. A nil bound is open.
func Range(min, max *float64) Rule {
	return rangeRule{min: min, max: max}
}

// Min is Range with only a lower bound.
func Min(min float64) Rule { return rangeRule{min: &min} }

// Max is Range with only an upper bound.
func Max(max float64) Rule { return rangeRule{max: &max} }

type lengthRule struct {
	min, max int
}

func (r lengthRule) Check(value any) (string, bool) {
	if IsBlank(value) {
		return "", true
	}
	n := utf8.RuneCountInString(fmt.Sprint(value))
	if r.min > 0 && n < r.min {
		return fmt.Sprintf("is too short (minimum is %d characters)", r.min), false
	}
	if r.max > 0 && n > r.max {
		return fmt.Sprintf("is too long (maximum is %d characters)", r.max), false
	}
	return "", true
}

// Length bounds the character count of a value's string form. Zero disables a bound.
func Length(min, max int) Rule {
	return lengthRule{min: min, max: max}
}

type inclusionRule struct {
	values []any
}

func (r inclusionRule) Check(value any) (string, bool) {
	if IsBlank(value) {
		return "", true
	}
	for _, v := range r.values {
		if reflect.DeepEqual(v, value) || fmt.Sprint(v) == fmt.Sprint(value) {
			return "", true
		}
	}
	return "is not included in the list", false
}

// Inclusion requires the value to be one of values.
func Inclusion(values ...any) Rule {
	return inclusionRule{values: values}
}
