package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/step"
	"github.com/aretw0/stepwise/pkg/wizard"
)

// Builder manages the wizard construction.
type Builder struct {
	name  string
	steps []*StepBuilder
	index map[string]*StepBuilder
	errs  []error
}

// New creates a new wizard builder.
func New(name string) *Builder {
	return &Builder{
		name:  name,
		index: make(map[string]*StepBuilder),
	}
}

// Add appends a step to the wizard.
// If the step already exists, it returns the existing builder without moving it.
func (b *Builder) Add(key string) *StepBuilder {
	if sb, ok := b.index[key]; ok {
		return sb
	}
	sb := newStepBuilder(b, key)
	b.index[key] = sb
	b.steps = append(b.steps, sb)
	return sb
}

// Build compiles the steps into a wizard registry.
// Errors recorded while chaining are reported here, together with those of wizard.Define.
func (b *Builder) Build() (*wizard.Registry, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidDefinition, errors.Join(b.errs...))
	}
	defs := make([]*step.Definition, 0, len(b.steps))
	for _, sb := range b.steps {
		defs = append(defs, sb.Definition())
	}

	reg, err := wizard.Define(b.name, defs...)
	if err != nil {
		return nil, fmt.Errorf("failed to build wizard %q: %w", b.name, err)
	}
	return reg, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *wizard.Registry {
	reg, err := b.Build()
	if err != nil {
		panic(err)
	}
	return reg
}
