package wizard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/aretw0/stepwise/pkg/step"
)

// Completer is the finalization routine run by Complete. Its result is handed to the
// onComplete callback. It runs before the Store is purged, so it can read ExportData.
type Completer func(ctx context.Context, w *Wizard) (any, error)

// Wizard binds a Registry, a Store and a current key for one request.
// It holds no state of its own: every answer is derived from the Store on each call.
type Wizard struct {
	registry   *Registry
	store      ports.Store
	currentKey string
	context    map[string]any
	completer  Completer
	logger     *slog.Logger
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithContext sets the opaque context handed to every step.
func WithContext(ctx map[string]any) Option {
	return func(w *Wizard) {
		w.context = ctx
	}
}

// WithCompleter sets the finalization routine run by Complete.
func WithCompleter(c Completer) Option {
	return func(w *Wizard) {
		w.completer = c
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Wizard) {
		w.logger = logger
	}
}

// New creates a wizard positioned at currentKey. An empty key selects the first step.
func New(reg *Registry, store ports.Store, currentKey string, opts ...Option) (*Wizard, error) {
	if reg == nil {
		return nil, fmt.Errorf("%w: wizard registry", domain.ErrNotConfigured)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: wizard store", domain.ErrNotConfigured)
	}
	if currentKey == "" {
		currentKey = reg.FirstKey()
	}
	if _, err := reg.KeyIndex(currentKey); err != nil {
		return nil, err
	}

	w := &Wizard{
		registry:   reg,
		store:      store,
		currentKey: currentKey,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.context == nil {
		w.context = map[string]any{}
	}
	if w.completer == nil {
		w.completer = func(context.Context, *Wizard) (any, error) { return nil, nil }
	}
	w.logger = w.logger.With("wizard", reg.Name())
	return w, nil
}

// Registry returns the wizard's registry.
func (w *Wizard) Registry() *Registry { return w.registry }

// Store returns the wizard's store.
func (w *Wizard) Store() ports.Store { return w.store }

// Context returns the opaque context.
func (w *Wizard) Context() map[string]any { return w.context }

// CurrentKey returns the key the wizard was constructed at.
func (w *Wizard) CurrentKey() string { return w.currentKey }

// LaterKeys returns the keys after the current one in registry order, skipped or not.
func (w *Wizard) LaterKeys() []string {
	keys := w.registry.StepKeys()
	return keys[w.currentIndex()+1:]
}

// EarlierKeys returns the keys before the current one in registry order, skipped or not.
func (w *Wizard) EarlierKeys() []string {
	keys := w.registry.StepKeys()
	return keys[:w.currentIndex()]
}

func (w *Wizard) currentIndex() int {
	// currentKey is checked in New.
	i, _ := w.registry.KeyIndex(w.currentKey)
	return i
}

// Find builds the step registered under key from the Store.
func (w *Wizard) Find(key string) (*step.Step, error) {
	def, err := w.registry.Step(key)
	if err != nil {
		return nil, err
	}
	return w.build(def, nil), nil
}

// FindCurrentStep builds the current step.
func (w *Wizard) FindCurrentStep() *step.Step {
	def, _ := w.registry.Step(w.currentKey)
	return w.build(def, nil)
}

// FindCurrentStepWith builds the current step seeded with initial attributes.
func (w *Wizard) FindCurrentStepWith(initial map[string]any) *step.Step {
	def, _ := w.registry.Step(w.currentKey)
	return w.build(def, initial)
}

func (w *Wizard) build(def *step.Definition, initial map[string]any) *step.Step {
	return step.New(def, w.store, initial, step.WithContext(w.context), step.WithFields(w.registry.Field))
}

// NextKey returns the first non-skipped key after the current one, or "".
func (w *Wizard) NextKey() string {
	key, _ := w.NextKeyFrom(w.currentKey)
	return key
}

// NextKeyFrom returns the first non-skipped key after from, or "" when there is none.
func (w *Wizard) NextKeyFrom(from string) (string, error) {
	return w.walk(from, 1)
}

// PreviousKey returns the first non-skipped key before the current one, or "".
func (w *Wizard) PreviousKey() string {
	key, _ := w.PreviousKeyFrom(w.currentKey)
	return key
}

// PreviousKeyFrom returns the first non-skipped key before from, or "" when there is none.
func (w *Wizard) PreviousKeyFrom(from string) (string, error) {
	return w.walk(from, -1)
}

func (w *Wizard) walk(from string, dir int) (string, error) {
	i, err := w.registry.KeyIndex(from)
	if err != nil {
		return "", err
	}
	for i += dir; i >= 0 && i < len(w.registry.steps); i += dir {
		def := w.registry.steps[i]
		if w.build(def, nil).Skipped() {
			w.logger.Debug("skipping step", "from", from, "step", def.Key)
			continue
		}
		return def.Key, nil
	}
	return "", nil
}

// FirstStep reports whether no eligible step precedes the current one.
func (w *Wizard) FirstStep() bool {
	return w.PreviousKey() == ""
}

// LastStep reports whether no eligible step follows the current one.
// When every other step is skipped, FirstStep and LastStep are both true.
func (w *Wizard) LastStep() bool {
	return w.NextKey() == ""
}

// CanProceed reports the current step's navigation gate.
func (w *Wizard) CanProceed() bool {
	return w.FindCurrentStep().CanProceed()
}

// eligible returns every non-skipped step, built fresh from the Store, in registry order.
func (w *Wizard) eligible() []*step.Step {
	var out []*step.Step
	for _, def := range w.registry.steps {
		s := w.build(def, nil)
		if s.Skipped() {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Valid reports whether every non-skipped step is valid against the stored data,
// visited or not.
func (w *Wizard) Valid() bool {
	for _, s := range w.eligible() {
		if !s.Valid() {
			return false
		}
	}
	return true
}

// IsComplete reports whether the current step is the last eligible one and the wizard is valid.
func (w *Wizard) IsComplete() bool {
	return w.LastStep() && w.Valid()
}

// Complete is the single commit point of the workflow. When IsComplete is true it runs
// the Completer, purges the Store and invokes onComplete once with the Completer's result.
// Otherwise, or when the Completer fails, the Store is left untouched and onComplete is
// not invoked.
func (w *Wizard) Complete(ctx context.Context, onComplete func(result any)) (bool, error) {
	if !w.IsComplete() {
		return false, nil
	}

	result, err := w.completer(ctx, w)
	if err != nil {
		return false, fmt.Errorf("failed to complete wizard %q: %w", w.registry.Name(), err)
	}

	w.store.Purge()
	w.logger.Info("wizard completed", "step", w.currentKey)

	if onComplete != nil {
		onComplete(result)
	}
	return true, nil
}

// InvalidSteps returns the non-skipped steps that are not valid, in registry order.
func (w *Wizard) InvalidSteps() []*step.Step {
	var out []*step.Step
	for _, s := range w.eligible() {
		if !s.Valid() {
			out = append(out, s)
		}
	}
	return out
}

// FirstInvalidStep returns the first of InvalidSteps, or nil.
func (w *Wizard) FirstInvalidStep() *step.Step {
	for _, s := range w.eligible() {
		if !s.Valid() {
			return s
		}
	}
	return nil
}

// StepAnswers pairs a definition with its reviewable answers.
type StepAnswers struct {
	Definition *step.Definition
	Answers    map[string]any
}

// ReviewableAnswersByStep returns the reviewable answers of every non-skipped step,
// in registry order.
func (w *Wizard) ReviewableAnswersByStep() []StepAnswers {
	var out []StepAnswers
	for _, s := range w.eligible() {
		out = append(out, StepAnswers{Definition: s.Definition(), Answers: s.ReviewableAnswers()})
	}
	return out
}

// ExportData merges the exported data of every non-skipped step.
func (w *Wizard) ExportData() map[string]any {
	out := make(map[string]any)
	for _, s := range w.eligible() {
		for k, v := range s.Export() {
			out[k] = v
		}
	}
	return out
}
