package step

import (
	"reflect"

	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/aretw0/stepwise/pkg/schema"
)

// Step is one step instance, built from the Store for a single request.
type Step struct {
	def     *Definition
	store   ports.Store
	context map[string]any
	values  map[string]any
	fields  func(name string) (schema.Field, bool)
}

// Option configures a Step.
type Option func(*Step)

// WithContext passes the wizard's opaque context through to Skip, Proceed and validators.
func WithContext(ctx map[string]any) Option {
	return func(s *Step) {
		s.context = ctx
	}
}

// WithFields resolves attributes declared by other steps, so Stored can type them.
func WithFields(lookup func(name string) (schema.Field, bool)) Option {
	return func(s *Step) {
		s.fields = lookup
	}
}

// New builds a step. Declared attributes are seeded from initial first, then backfilled
// from the Store, then from the field default. Keys of initial that the definition does
// not declare are ignored.
func New(def *Definition, store ports.Store, initial map[string]any, opts ...Option) *Step {
	s := &Step{
		def:    def,
		store:  store,
		values: make(map[string]any, len(def.Attributes)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.context == nil {
		s.context = map[string]any{}
	}

	for _, f := range def.Attributes {
		if v, ok := initial[f.Name]; ok {
			s.values[f.Name] = coerce(f, v)
			continue
		}
		if v, ok := store.Get(f.Name); ok {
			s.values[f.Name] = coerce(f, v)
			continue
		}
		s.values[f.Name] = f.Default
	}
	return s
}

// coerce keeps the raw value when it cannot be converted; validation then reports it.
func coerce(f schema.Field, v any) any {
	c, err := f.Coerce(v)
	if err != nil {
		return v
	}
	return c
}

// Key returns the definition's key.
func (s *Step) Key() string { return s.def.Key }

// ID is an alias of Key, used where a step stands in for a route identifier.
func (s *Step) ID() string { return s.def.Key }

// Title returns the definition's display title.
func (s *Step) Title() string { return s.def.Name() }

// Definition returns the static definition.
func (s *Step) Definition() *Definition { return s.def }

// Store returns the store the step reads from.
func (s *Step) Store() ports.Store { return s.store }

// Context returns the opaque wizard context.
func (s *Step) Context() map[string]any { return s.context }

// ContainsPersonalDetails reports the definition's classification flag.
func (s *Step) ContainsPersonalDetails() bool { return s.def.ContainsPersonalDetails }

// Get returns the current in-memory value of a declared attribute.
func (s *Step) Get(name string) any { return s.values[name] }

// Stored returns the value saved under name, coerced to its declared type.
// Session backends that round-trip through JSON hand numbers back as json.Number;
// Stored gives Skip and Proceed predicates the same Go types on every backend.
// Names declared nowhere are returned as stored.
func (s *Step) Stored(name string) (any, bool) {
	v, ok := s.store.Get(name)
	if !ok {
		return nil, false
	}
	f, found := s.def.Field(name)
	if !found && s.fields != nil {
		f, found = s.fields(name)
	}
	if !found {
		return v, true
	}
	return coerce(f, v), true
}

// Attributes returns the declared attribute names in order.
func (s *Step) Attributes() []string { return s.def.AttributeNames() }

// AssignAttributes sets the declared attributes present in partial.
// Unrecognized keys are dropped.
func (s *Step) AssignAttributes(partial map[string]any) {
	for name, v := range partial {
		f, ok := s.def.Field(name)
		if !ok {
			continue
		}
		s.values[name] = coerce(f, v)
	}
}

// Errors validates the current values and returns every violation keyed by attribute.
func (s *Step) Errors() schema.Errors {
	errs := schema.Validate(s.def.Attributes, s.values)
	for _, v := range s.def.Validators {
		errs.Merge(v(s))
	}
	return errs
}

// Valid reports whether Errors is empty.
func (s *Step) Valid() bool {
	return s.Errors().Empty()
}

// Save writes every declared attribute to the Store when the step is valid,
// including attributes the caller never touched. An invalid step writes nothing.
func (s *Step) Save() bool {
	if !s.Valid() {
		return false
	}
	for _, f := range s.def.Attributes {
		s.store.Set(f.Name, s.values[f.Name])
	}
	return true
}

// CanProceed reports whether navigation past this step is allowed.
func (s *Step) CanProceed() bool {
	if s.def.Proceed == nil {
		return true
	}
	return s.def.Proceed(s)
}

// Skipped reports whether the step is currently skipped.
func (s *Step) Skipped() bool {
	if s.def.Skip == nil {
		return false
	}
	return s.def.Skip(s)
}

// Persisted reports whether any declared attribute differs from its default,
// regardless of validity.
func (s *Step) Persisted() bool {
	for _, f := range s.def.Attributes {
		if !reflect.DeepEqual(s.values[f.Name], f.Default) {
			return true
		}
	}
	return false
}

// ReviewableAnswers returns the current in-memory values of the declared attributes.
func (s *Step) ReviewableAnswers() map[string]any {
	out := make(map[string]any, len(s.def.Attributes))
	for _, f := range s.def.Attributes {
		out[f.Name] = s.values[f.Name]
	}
	return out
}

// Export returns the declared attributes as persisted in the Store, coerced to their types.
// Unsaved assignments are not visible; absent attributes export as nil.
func (s *Step) Export() map[string]any {
	out := make(map[string]any, len(s.def.Attributes))
	for _, f := range s.def.Attributes {
		v, _ := s.Stored(f.Name)
		out[f.Name] = v
	}
	return out
}
