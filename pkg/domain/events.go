package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepSaved    EventType = "step_saved"
	EventStepRejected EventType = "step_rejected"
	EventComplete     EventType = "wizard_complete"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	Wizard    string    `json:"wizard"`
}

// StepEvent represents a save attempt on a step.
type StepEvent struct {
	EventBase
	StepKey string              `json:"step_key"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// CompleteEvent represents a finished completion transaction.
type CompleteEvent struct {
	EventBase
	StepKey string `json:"step_key"`
	Result  any    `json:"result,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStepSaved    func(context.Context, *StepEvent)
	OnStepRejected func(context.Context, *StepEvent)
	OnComplete     func(context.Context, *CompleteEvent)
}

// MergeHooks fans every callback out to all non-nil hooks, in order.
func MergeHooks(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStepSaved: func(ctx context.Context, e *StepEvent) {
			for _, h := range hooks {
				if h.OnStepSaved != nil {
					h.OnStepSaved(ctx, e)
				}
			}
		},
		OnStepRejected: func(ctx context.Context, e *StepEvent) {
			for _, h := range hooks {
				if h.OnStepRejected != nil {
					h.OnStepRejected(ctx, e)
				}
			}
		},
		OnComplete: func(ctx context.Context, e *CompleteEvent) {
			for _, h := range hooks {
				if h.OnComplete != nil {
					h.OnComplete(ctx, e)
				}
			}
		},
	}
}
