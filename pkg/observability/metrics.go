package observability

import (
	"context"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the wizard collectors.
type Metrics struct {
	stepsSaved    *prometheus.CounterVec
	stepsRejected *prometheus.CounterVec
	fieldErrors   *prometheus.CounterVec
	completions   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		stepsSaved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepwise_steps_saved_total",
				Help: "Steps whose submission passed validation and was written to the store.",
			},
			[]string{"wizard", "step"},
		),
		stepsRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepwise_steps_rejected_total",
				Help: "Step submissions rejected by validation.",
			},
			[]string{"wizard", "step"},
		),
		fieldErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepwise_field_errors_total",
				Help: "Validation messages per attribute in rejected submissions.",
			},
			[]string{"wizard", "step", "attribute"},
		),
		completions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepwise_completions_total",
				Help: "Wizards completed.",
			},
			[]string{"wizard"},
		),
	}
	reg.MustRegister(m.stepsSaved, m.stepsRejected, m.fieldErrors, m.completions)
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepSaved: func(_ context.Context, e *domain.StepEvent) {
			m.stepsSaved.WithLabelValues(e.Wizard, e.StepKey).Inc()
		},
		OnStepRejected: func(_ context.Context, e *domain.StepEvent) {
			m.stepsRejected.WithLabelValues(e.Wizard, e.StepKey).Inc()
			for attr, msgs := range e.Errors {
				m.fieldErrors.WithLabelValues(e.Wizard, e.StepKey, attr).Add(float64(len(msgs)))
			}
		},
		OnComplete: func(_ context.Context, e *domain.CompleteEvent) {
			m.completions.WithLabelValues(e.Wizard).Inc()
		},
	}
}
