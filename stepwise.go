package stepwise

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/aretw0/stepwise/pkg/session"
	"github.com/aretw0/stepwise/pkg/store"
	"github.com/aretw0/stepwise/pkg/wizard"
)

// ContextFunc builds the opaque wizard context for one request.
type ContextFunc func(ctx context.Context, sessionID string) map[string]any

// KeyFunc maps a wizard name and a caller session id to the storage scope of the answers.
type KeyFunc func(wizardName, sessionID string) string

// DefaultKey scopes answers as "<wizard>:<session>", so one caller session can run
// several wizards without their answers colliding.
func DefaultKey(wizardName, sessionID string) string {
	return wizardName + ":" + sessionID
}

// Engine drives one wizard type over persisted sessions. It is the transport-agnostic
// form of a step controller: Index picks the entry step, Show describes a step and
// Update runs assign, save, complete or advance. Engine is safe for concurrent use;
// requests for the same session are serialized.
type Engine struct {
	registry  *wizard.Registry
	store     ports.SessionStore
	locker    ports.DistributedLocker
	lockTTL   time.Duration
	sessions  *session.Manager
	completer wizard.Completer
	contextFn ContextFunc
	keyFn     KeyFunc
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures the Engine.
type Option func(*Engine)

// WithSessionStore sets where answers are kept between requests. Required.
func WithSessionStore(s ports.SessionStore) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithLocker serializes sessions across processes.
func WithLocker(l ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = l
	}
}

// WithLockTTL bounds how long a distributed session lock may be held.
func WithLockTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.lockTTL = ttl
	}
}

// WithCompleter sets the finalization routine run when the wizard completes.
func WithCompleter(c wizard.Completer) Option {
	return func(e *Engine) {
		e.completer = c
	}
}

// WithContextFunc sets the per-request wizard context.
func WithContextFunc(fn ContextFunc) Option {
	return func(e *Engine) {
		e.contextFn = fn
	}
}

// WithKeyFunc overrides how session ids map to storage keys.
func WithKeyFunc(fn KeyFunc) Option {
	return func(e *Engine) {
		e.keyFn = fn
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an Engine for reg. It fails with domain.ErrNotConfigured when no
// session store is given.
func New(reg *wizard.Registry, opts ...Option) (*Engine, error) {
	if reg == nil {
		return nil, fmt.Errorf("%w: wizard registry", domain.ErrNotConfigured)
	}
	e := &Engine{
		registry: reg,
		keyFn:    DefaultKey,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		return nil, fmt.Errorf("%w: session store for wizard %q", domain.ErrNotConfigured, reg.Name())
	}

	mgrOpts := []session.Option{session.WithLogger(e.logger)}
	if e.locker != nil {
		mgrOpts = append(mgrOpts, session.WithLocker(e.locker))
	}
	if e.lockTTL > 0 {
		mgrOpts = append(mgrOpts, session.WithLockTTL(e.lockTTL))
	}
	e.sessions = session.NewManager(e.store, mgrOpts...)
	return e, nil
}

// Registry returns the wizard definition.
func (e *Engine) Registry() *wizard.Registry { return e.registry }

// Sessions returns the session manager.
func (e *Engine) Sessions() *session.Manager { return e.sessions }

// StorageKey returns the key under which a session's answers are stored.
func (e *Engine) StorageKey(sessionID string) string {
	return e.keyFn(e.registry.Name(), sessionID)
}

// Index returns the key a new visitor starts at.
func (e *Engine) Index() string {
	return e.registry.FirstKey()
}

// run opens the session's Store and a wizard positioned at key.
func (e *Engine) run(ctx context.Context, sessionID, key string, fn func(context.Context, *wizard.Wizard) error) error {
	return e.sessions.Run(ctx, e.StorageKey(sessionID), func(ctx context.Context, s *store.Store) error {
		opts := []wizard.Option{wizard.WithLogger(e.logger.With("session_id", sessionID))}
		if e.completer != nil {
			opts = append(opts, wizard.WithCompleter(e.completer))
		}
		if e.contextFn != nil {
			opts = append(opts, wizard.WithContext(e.contextFn(ctx, sessionID)))
		}
		w, err := wizard.New(e.registry, s, key, opts...)
		if err != nil {
			return err
		}
		return fn(ctx, w)
	})
}

// Show describes the step at key with the session's current answers.
func (e *Engine) Show(ctx context.Context, sessionID, key string) (*View, error) {
	var view *View
	err := e.run(ctx, sessionID, key, func(ctx context.Context, w *wizard.Wizard) error {
		view = newView(w, w.FindCurrentStep())
		return nil
	})
	return view, err
}

// Update submits params to the step at key.
//
// The step is built from the session, params are assigned (undeclared names are dropped)
// and the step is saved. A rejected save returns OutcomeInvalid with the errors and
// writes nothing. A saved step that completes the wizard runs the completion transaction
// and returns OutcomeCompleted. Otherwise the outcome is OutcomeAdvance with the next
// eligible key or, on the last step, the first invalid one.
func (e *Engine) Update(ctx context.Context, sessionID, key string, params map[string]any) (*Outcome, error) {
	var out *Outcome
	err := e.run(ctx, sessionID, key, func(ctx context.Context, w *wizard.Wizard) error {
		s := w.FindCurrentStep()
		s.AssignAttributes(params)

		if !s.Save() {
			errs := s.Errors()
			e.logger.Debug("step rejected", "wizard", e.registry.Name(), "session_id", sessionID, "step", key, "fields", errs.Fields())
			if e.hooks.OnStepRejected != nil {
				e.hooks.OnStepRejected(ctx, e.stepEvent(domain.EventStepRejected, sessionID, key, errs))
			}
			out = &Outcome{Kind: OutcomeInvalid, Key: key, Errors: errs, View: newView(w, s)}
			return nil
		}
		if e.hooks.OnStepSaved != nil {
			e.hooks.OnStepSaved(ctx, e.stepEvent(domain.EventStepSaved, sessionID, key, nil))
		}

		if w.IsComplete() {
			var result any
			done, err := w.Complete(ctx, func(r any) { result = r })
			if err != nil {
				return err
			}
			if done {
				if e.hooks.OnComplete != nil {
					e.hooks.OnComplete(ctx, &domain.CompleteEvent{
						EventBase: e.base(domain.EventComplete, sessionID),
						StepKey:   key,
						Result:    result,
					})
				}
				out = &Outcome{Kind: OutcomeCompleted, Key: key, Result: result}
				return nil
			}
		}

		out = &Outcome{Kind: OutcomeAdvance, Key: key, NextKey: nextKey(w)}
		return nil
	})
	return out, err
}

// nextKey is the redirect target after a successful save that did not complete.
// It falls back to the current key when there is nowhere else to go.
func nextKey(w *wizard.Wizard) string {
	if next := w.NextKey(); next != "" {
		return next
	}
	if invalid := w.FirstInvalidStep(); invalid != nil {
		return invalid.Key()
	}
	return w.CurrentKey()
}

// Review summarizes the session's answers for every non-skipped step.
func (e *Engine) Review(ctx context.Context, sessionID string) (*Review, error) {
	var review *Review
	err := e.run(ctx, sessionID, "", func(ctx context.Context, w *wizard.Wizard) error {
		review = newReview(w)
		return nil
	})
	return review, err
}

// Export returns the merged saved data of every non-skipped step.
func (e *Engine) Export(ctx context.Context, sessionID string) (map[string]any, error) {
	var data map[string]any
	err := e.run(ctx, sessionID, "", func(ctx context.Context, w *wizard.Wizard) error {
		data = w.ExportData()
		return nil
	})
	return data, err
}

// Reset discards every answer of the session.
func (e *Engine) Reset(ctx context.Context, sessionID string) error {
	return e.sessions.Run(ctx, e.StorageKey(sessionID), func(ctx context.Context, s *store.Store) error {
		s.Purge()
		return nil
	})
}

func (e *Engine) base(t domain.EventType, sessionID string) domain.EventBase {
	return domain.EventBase{
		Timestamp: e.now(),
		Type:      t,
		SessionID: sessionID,
		Wizard:    e.registry.Name(),
	}
}

func (e *Engine) stepEvent(t domain.EventType, sessionID, key string, errs map[string][]string) *domain.StepEvent {
	return &domain.StepEvent{EventBase: e.base(t, sessionID), StepKey: key, Errors: errs}
}
