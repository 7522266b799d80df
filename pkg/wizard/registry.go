package wizard

import (
	"fmt"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/schema"
	"github.com/aretw0/stepwise/pkg/step"
)

// Registry is the ordered, immutable set of step definitions of one wizard type.
// Position is registration order. A Registry is safe for concurrent use because it is
// never mutated after Define returns.
type Registry struct {
	name  string
	steps  []*step.Definition
	index  map[string]int
	fields map[string]schema.Field
}

// Define builds a registry from definitions in order.
// It rejects empty or duplicate keys, malformed definitions, and attribute names declared
// by more than one step (exported data is a flat merge, so a collision would lose answers).
func Define(name string, defs ...*step.Definition) (*Registry, error) {
	r := &Registry{
		name:  name,
		steps:  make([]*step.Definition, 0, len(defs)),
		index:  make(map[string]int, len(defs)),
		fields: make(map[string]schema.Field),
	}
	owners := make(map[string]string)

	for _, def := range defs {
		if def == nil {
			return nil, fmt.Errorf("%w: nil definition in wizard %q", domain.ErrInvalidDefinition, name)
		}
		if err := def.Check(); err != nil {
			return nil, err
		}
		if _, dup := r.index[def.Key]; dup {
			return nil, fmt.Errorf("%w: %q in wizard %q", domain.ErrDuplicateStep, def.Key, name)
		}
		for _, attr := range def.AttributeNames() {
			if owner, taken := owners[attr]; taken {
				return nil, fmt.Errorf("%w: %q is declared by steps %q and %q", domain.ErrDuplicateAttribute, attr, owner, def.Key)
			}
			owners[attr] = def.Key
		}
		for _, f := range def.Attributes {
			r.fields[f.Name] = f
		}
		r.index[def.Key] = len(r.steps)
		r.steps = append(r.steps, def)
	}

	if len(r.steps) == 0 {
		return nil, fmt.Errorf("%w: wizard %q has no steps", domain.ErrInvalidDefinition, name)
	}
	return r, nil
}

// MustDefine is like Define but panics on error. Intended for package-level registries.
func MustDefine(name string, defs ...*step.Definition) *Registry {
	r, err := Define(name, defs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Name returns the wizard type name.
func (r *Registry) Name() string { return r.name }

// Len returns the number of steps.
func (r *Registry) Len() int { return len(r.steps) }

// IndexedSteps returns the definitions in registry order.
func (r *Registry) IndexedSteps() []*step.Definition {
	out := make([]*step.Definition, len(r.steps))
	copy(out, r.steps)
	return out
}

// Step returns the definition registered under key.
func (r *Registry) Step(key string) (*step.Definition, error) {
	i, err := r.KeyIndex(key)
	if err != nil {
		return nil, err
	}
	return r.steps[i], nil
}

// KeyIndex returns the zero-based position of key.
func (r *Registry) KeyIndex(key string) (int, error) {
	i, ok := r.index[key]
	if !ok {
		return -1, domain.NewUnknownStep(r.name, key)
	}
	return i, nil
}

// Has reports whether key is registered.
func (r *Registry) Has(key string) bool {
	_, ok := r.index[key]
	return ok
}

// StepKeys returns the keys in registry order.
func (r *Registry) StepKeys() []string {
	keys := make([]string, len(r.steps))
	for i, def := range r.steps {
		keys[i] = def.Key
	}
	return keys
}

// FirstKey returns the key of the first registered step.
func (r *Registry) FirstKey() string {
	return r.steps[0].Key
}

// Field returns the declaration of an attribute, whichever step owns it.
func (r *Registry) Field(name string) (schema.Field, bool) {
	f, ok := r.fields[name]
	return f, ok
}

// PersonalAttributes returns the attribute names owned by steps flagged as containing
// personal details, in registry order.
func (r *Registry) PersonalAttributes() []string {
	var out []string
	for _, def := range r.steps {
		if def.ContainsPersonalDetails {
			out = append(out, def.AttributeNames()...)
		}
	}
	return out
}
