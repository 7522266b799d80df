package step

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/schema"
)

// Validator is a cross-attribute rule evaluated after the per-field rules.
type Validator func(s *Step) schema.Errors

// Definition is the static description of a step.
type Definition struct {
	// Key identifies the step within its wizard.
	Key string

	// Title is shown to users. Empty means Humanize(Key).
	Title string

	// Attributes are the typed attributes the step owns, in display order.
	Attributes []schema.Field

	// Validators run after the field rules.
	Validators []Validator

	// ContainsPersonalDetails classifies the step's data. It does not affect navigation,
	// validation or export.
	ContainsPersonalDetails bool

	// Skip reports whether the step is currently skipped. It is evaluated on every query
	// and may read answers collected by earlier steps through s.Store(). Nil means never.
	Skip func(s *Step) bool

	// Proceed gates navigation on side conditions beyond attribute validity. Nil means always.
	Proceed func(s *Step) bool
}

// Name returns the title, falling back to the humanized key.
func (d *Definition) Name() string {
	if d.Title != "" {
		return d.Title
	}
	return Humanize(d.Key)
}

// Field returns the declared attribute called name.
func (d *Definition) Field(name string) (schema.Field, bool) {
	for _, f := range d.Attributes {
		if f.Name == name {
			return f, true
		}
	}
	return schema.Field{}, false
}

// AttributeNames returns the declared attribute names in order.
func (d *Definition) AttributeNames() []string {
	names := make([]string, len(d.Attributes))
	for i, f := range d.Attributes {
		names[i] = f.Name
	}
	return names
}

// Check reports structural problems with the definition.
func (d *Definition) Check() error {
	if strings.TrimSpace(d.Key) == "" {
		return fmt.Errorf("%w: empty key", domain.ErrInvalidDefinition)
	}
	seen := make(map[string]bool, len(d.Attributes))
	for _, f := range d.Attributes {
		if f.Name == "" {
			return fmt.Errorf("%w: step %q has an attribute without a name", domain.ErrInvalidDefinition, d.Key)
		}
		if f.Type == nil {
			return fmt.Errorf("%w: step %q attribute %q has no type", domain.ErrInvalidDefinition, d.Key, f.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: step %q declares %q twice", domain.ErrDuplicateAttribute, d.Key, f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

// Humanize turns an identifier into a sentence-case label: "first_step" becomes "First step".
func Humanize(key string) string {
	s := strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(key))
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
