package schema

// Field declares one typed attribute and the rules that apply to it.
type Field struct {
	Name    string
	Type    Type
	Default any
	Rules   []Rule
}

// Coerce converts a raw value to the field's type.
// On failure the raw value is returned together with the error.
func (f Field) Coerce(value any) (any, error) {
	if f.Type == nil {
		return value, nil
	}
	return f.Type.Coerce(value)
}

// Check returns every violation message for value, in rule order.
// A non-blank value that does not conform to the type short-circuits the rules.
func (f Field) Check(value any) []string {
	if f.Type != nil && !IsBlank(value) {
		if err := f.Type.Validate(value); err != nil {
			return []string{"is not a valid " + f.Type.Name()}
		}
	}

	var msgs []string
	for _, rule := range f.Rules {
		if msg, ok := rule.Check(value); !ok {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

// Required reports whether the field carries a Presence rule.
func (f Field) Required() bool {
	for _, rule := range f.Rules {
		if _, ok := rule.(presenceRule); ok {
			return true
		}
	}
	return false
}
