package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/internal/logging"
)

// Commands recognised at any prompt instead of an answer.
const (
	CommandBack   = ":back"
	CommandReview = ":review"
	CommandQuit   = ":quit"
)

// Engine is the part of *stepwise.Engine the runner drives.
type Engine interface {
	Index() string
	Show(ctx context.Context, sessionID, key string) (*stepwise.View, error)
	Update(ctx context.Context, sessionID, key string, params map[string]any) (*stepwise.Outcome, error)
	Review(ctx context.Context, sessionID string) (*stepwise.Review, error)
}

// Result reports how a Run ended.
type Result struct {
	// Completed is true when the wizard's completion transaction ran.
	Completed bool
	// Key is the last step shown to the user.
	Key string
	// Value is whatever the completer handed to its callback.
	Value any
}

// Runner walks a session through a wizard one step at a time,
// prompting for every attribute of the current step.
type Runner struct {
	engine   Engine
	handler  IOHandler
	startKey string
	logger   *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithHandler sets the IO strategy. Defaults to a TextHandler on stdin/stdout.
func WithHandler(h IOHandler) Option {
	return func(r *Runner) {
		r.handler = h
	}
}

// WithStartKey starts at the given step instead of resuming at the first invalid one.
func WithStartKey(key string) Option {
	return func(r *Runner) {
		r.startKey = key
	}
}

// WithLogger sets the runner's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a runner for the engine.
func NewRunner(engine Engine, opts ...Option) *Runner {
	r := &Runner{
		engine: engine,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.handler == nil {
		r.handler = NewTextHandler(nil, nil)
	}
	return r
}

// Run drives sessionID until the wizard completes, the user quits, or input ends.
// Quitting or reaching EOF leaves the session stored for a later resume.
func (r *Runner) Run(ctx context.Context, sessionID string) (*Result, error) {
	key, err := r.resume(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	res := &Result{}

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		view, err := r.engine.Show(ctx, sessionID, key)
		if err != nil {
			return res, fmt.Errorf("show step %q: %w", key, err)
		}
		res.Key = view.Key
		if err := r.handler.ShowStep(ctx, view); err != nil {
			return res, fmt.Errorf("output error: %w", err)
		}

		params, cmd, err := r.collect(ctx, view)
		if errors.Is(err, io.EOF) {
			r.logger.Debug("input closed", "session_id", sessionID, "step", key)
			return res, nil
		}
		if err != nil {
			return res, err
		}

		switch cmd {
		case CommandQuit:
			return res, nil
		case CommandBack:
			if view.PreviousKey != "" {
				key = view.PreviousKey
			}
			continue
		case CommandReview:
			review, err := r.engine.Review(ctx, sessionID)
			if err != nil {
				return res, fmt.Errorf("review: %w", err)
			}
			if err := r.handler.ShowReview(ctx, review); err != nil {
				return res, fmt.Errorf("output error: %w", err)
			}
			continue
		}

		out, err := r.engine.Update(ctx, sessionID, key, params)
		if err != nil {
			return res, fmt.Errorf("update step %q: %w", key, err)
		}

		switch out.Kind {
		case stepwise.OutcomeInvalid:
			if err := r.handler.ShowErrors(ctx, out.Errors); err != nil {
				return res, fmt.Errorf("output error: %w", err)
			}
		case stepwise.OutcomeAdvance:
			key = out.NextKey
		case stepwise.OutcomeCompleted:
			res.Completed = true
			res.Value = out.Result
			if err := r.handler.ShowResult(ctx, out.Result); err != nil {
				return res, fmt.Errorf("output error: %w", err)
			}
			return res, nil
		}
	}
}

// resume picks the first step to show.
func (r *Runner) resume(ctx context.Context, sessionID string) (string, error) {
	if r.startKey != "" {
		return r.startKey, nil
	}
	review, err := r.engine.Review(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("resume session %q: %w", sessionID, err)
	}
	if len(review.InvalidKeys) > 0 {
		return review.InvalidKeys[0], nil
	}
	return r.engine.Index(), nil
}

// collect prompts for each attribute of the view. A command typed at any
// prompt abandons the remaining attributes and is returned instead.
func (r *Runner) collect(ctx context.Context, view *stepwise.View) (map[string]any, string, error) {
	params := make(map[string]any, len(view.Attributes))
	for _, attr := range view.Attributes {
		line, err := r.handler.Prompt(ctx, attr)
		if err != nil {
			return nil, "", err
		}
		line, err = SanitizeInput(strings.TrimSpace(line))
		if err != nil {
			if serr := r.handler.SystemOutput(ctx, err.Error()); serr != nil {
				return nil, "", serr
			}
			line = ""
		}
		switch line {
		case CommandBack, CommandReview, CommandQuit:
			return nil, line, nil
		}
		params[attr.Name] = parseAnswer(attr, line)
	}
	return params, "", nil
}

// parseAnswer turns a typed line into a submitted value. An empty line keeps
// the stored value. The engine coerces whatever is left.
func parseAnswer(attr stepwise.Attribute, line string) any {
	if line == "" {
		if attr.Value != nil {
			return attr.Value
		}
		return ""
	}
	switch {
	case attr.Type == "bool":
		switch strings.ToLower(line) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
	case strings.HasPrefix(attr.Type, "["):
		parts := strings.Split(line, ",")
		out := make([]any, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return line
}
