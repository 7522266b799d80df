package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Type defines the contract for attribute typing.
// Implementations determine how raw submitted values are coerced and checked.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "int").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
	// Coerce converts a raw value (typically a submitted string) to the type.
	// nil coerces to nil.
	Coerce(value any) (any, error)
}

// blankString reports whether v is a string holding only whitespace.
func blankString(v any) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

// --- Built-in Type Implementations ---

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	_, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

func (t *StringType) Coerce(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	var out string
	if err := mapstructure.WeakDecode(value, &out); err != nil {
		return value, fmt.Errorf("coerce %T to string: %w", value, err)
	}
	return out, nil
}

// IntType validates integer values.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64:
		return nil
	case float64:
		// Accept floats that are whole numbers (from JSON unmarshaling)
		if v == float64(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got float (not a whole number)")
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

func (t *IntType) Coerce(value any) (any, error) {
	if value == nil || blankString(value) {
		return nil, nil
	}
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32:
		var out int
		if err := mapstructure.WeakDecode(value, &out); err != nil {
			return value, err
		}
		return out, nil
	}
	switch v := value.(type) {
	case json.Number:
		value = v.String()
	case string:
		value = strings.TrimSpace(v)
	}
	// Integer literals parse exactly so values past 2^53 keep every digit. Anything else
	// goes through float64 so 3.5 is rejected instead of truncated.
	if s, ok := value.(string); ok && !strings.ContainsAny(s, ".eE") {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return value, fmt.Errorf("coerce %q to int: %w", s, err)
		}
		return int(n), nil
	}
	var f float64
	if err := mapstructure.WeakDecode(value, &f); err != nil {
		return value, fmt.Errorf("coerce %v to int: %w", value, err)
	}
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return value, fmt.Errorf("coerce %v to int: not a whole number", value)
	}
	return int(f), nil
}

// FloatType validates floating-point values.
type FloatType struct{}

func (t *FloatType) Name() string { return "float" }

func (t *FloatType) Validate(value any) error {
	switch value.(type) {
	case float32, float64, int, int8, int16, int32, int64:
		return nil
	default:
		return fmt.Errorf("expected float, got %T", value)
	}
}

func (t *FloatType) Coerce(value any) (any, error) {
	if value == nil || blankString(value) {
		return nil, nil
	}
	if s, ok := value.(string); ok {
		value = strings.TrimSpace(s)
	}
	var out float64
	if err := mapstructure.WeakDecode(value, &out); err != nil {
		return value, fmt.Errorf("coerce %v to float: %w", value, err)
	}
	return out, nil
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error {
	_, ok := value.(bool)
	if !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

func (t *BoolType) Coerce(value any) (any, error) {
	if value == nil || blankString(value) {
		return nil, nil
	}
	if s, ok := value.(string); ok {
		value = strings.TrimSpace(s)
	}
	var out bool
	if err := mapstructure.WeakDecode(value, &out); err != nil {
		return value, fmt.Errorf("coerce %v to bool: %w", value, err)
	}
	return out, nil
}

// SliceType validates slices of a specific element type.
type SliceType struct {
	elemType Type
}

func (t *SliceType) Name() string {
	return fmt.Sprintf("[%s]", t.elemType.Name())
}

func (t *SliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected slice, got %T", value)
	}

	// Validate each element
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if err := t.elemType.Validate(elem); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

func (t *SliceType) Coerce(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	var raw []any
	if err := mapstructure.WeakDecode(value, &raw); err != nil {
		return value, fmt.Errorf("coerce %T to %s: %w", value, t.Name(), err)
	}
	out := make([]any, len(raw))
	for i, elem := range raw {
		c, err := t.elemType.Coerce(elem)
		if err != nil {
			return value, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = c
	}
	return out, nil
}

// CustomType applies a user-defined validation function.
// Values are not coerced.
type CustomType struct {
	name     string
	validate func(any) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value any) error {
	return t.validate(value)
}

func (t *CustomType) Coerce(value any) (any, error) {
	return value, nil
}

// --- Factory Functions ---

// String creates a string type validator.
func String() Type { return &StringType{} }

// Int creates an integer type validator.
func Int() Type { return &IntType{} }

// Float creates a float type validator.
func Float() Type { return &FloatType{} }

// Bool creates a boolean type validator.
func Bool() Type { return &BoolType{} }

// Slice creates a slice type validator for elements of the given type.
func Slice(elemType Type) Type {
	return &SliceType{elemType: elemType}
}

// Custom creates a custom type validator with a user-defined function.
func Custom(name string, validate func(any) error) Type {
	return &CustomType{name: name, validate: validate}
}

// ParseType converts a string type name to a Type.
// Supports basic types: "string", "int", "float", "bool", "[string]", "[int]", etc.
func ParseType(typeStr string) (Type, error) {
	if len(typeStr) > 2 && typeStr[0] == '[' && typeStr[len(typeStr)-1] == ']' {
		elemType, err := ParseType(typeStr[1 : len(typeStr)-1])
		if err != nil {
			return nil, err
		}
		return Slice(elemType), nil
	}

	switch typeStr {
	case "string", "":
		return String(), nil
	case "int", "integer":
		return Int(), nil
	case "float":
		return Float(), nil
	case "bool", "boolean":
		return Bool(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}
