package dsl

import (
	"fmt"

	"github.com/aretw0/stepwise/pkg/schema"
	"github.com/aretw0/stepwise/pkg/step"
	"github.com/aretw0/stepwise/pkg/wizard"
)

// StepBuilder provides a fluent API for configuring a step.
type StepBuilder struct {
	def     step.Definition
	builder *Builder
}

func newStepBuilder(b *Builder, key string) *StepBuilder {
	return &StepBuilder{def: step.Definition{Key: key}, builder: b}
}

// Title sets the display title. Without one the key is humanized.
func (s *StepBuilder) Title(title string) *StepBuilder {
	s.def.Title = title
	return s
}

// Field declares an optional attribute.
func (s *StepBuilder) Field(name string, typ schema.Type, rules ...schema.Rule) *StepBuilder {
	s.def.Attributes = append(s.def.Attributes, schema.Field{Name: name, Type: typ, Rules: rules})
	return s
}

// Required declares an attribute that must be present.
func (s *StepBuilder) Required(name string, typ schema.Type, rules ...schema.Rule) *StepBuilder {
	return s.Field(name, typ, append([]schema.Rule{schema.Presence()}, rules...)...)
}

// Default sets the default value of an attribute declared earlier on this step.
func (s *StepBuilder) Default(name string, value any) *StepBuilder {
	for i := range s.def.Attributes {
		if s.def.Attributes[i].Name == name {
			s.def.Attributes[i].Default = value
			return s
		}
	}
	s.builder.errs = append(s.builder.errs, fmt.Errorf("step %q: default for undeclared attribute %q", s.def.Key, name))
	return s
}

// Personal marks the step as holding personal details.
func (s *StepBuilder) Personal() *StepBuilder {
	s.def.ContainsPersonalDetails = true
	return s
}

// Validate adds a cross-attribute rule.
func (s *StepBuilder) Validate(v step.Validator) *StepBuilder {
	s.def.Validators = append(s.def.Validators, v)
	return s
}

// SkipIf skips the step while fn reports true.
func (s *StepBuilder) SkipIf(fn func(*step.Step) bool) *StepBuilder {
	s.def.Skip = fn
	return s
}

// SkipUnless skips the step unless the stored value of attribute satisfies keep.
// Only saved answers are visible, so attribute must belong to an earlier step. The value
// arrives coerced to the attribute's declared type.
func (s *StepBuilder) SkipUnless(attribute string, keep func(v any) bool) *StepBuilder {
	return s.SkipIf(func(st *step.Step) bool {
		v, _ := st.Stored(attribute)
		return !keep(v)
	})
}

// Gate blocks navigation past the step while fn reports false.
func (s *StepBuilder) Gate(fn func(*step.Step) bool) *StepBuilder {
	s.def.Proceed = fn
	return s
}

// Add starts the next step on the same wizard.
func (s *StepBuilder) Add(key string) *StepBuilder {
	return s.builder.Add(key)
}

// Build compiles the whole wizard. See Builder.Build.
func (s *StepBuilder) Build() (*wizard.Registry, error) {
	return s.builder.Build()
}

// Definition returns a copy of the underlying step.Definition.
// This is primarily used by the Builder, but exposed for advanced usage.
func (s *StepBuilder) Definition() *step.Definition {
	def := s.def
	def.Attributes = append([]schema.Field(nil), s.def.Attributes...)
	def.Validators = append([]step.Validator(nil), s.def.Validators...)
	return &def
}
