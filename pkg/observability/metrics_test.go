package observability_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	hooks := observability.NewMetrics(reg).Hooks()
	ctx := context.Background()
	base := domain.EventBase{SessionID: "s1", Wizard: "signup"}

	hooks.OnStepSaved(ctx, &domain.StepEvent{EventBase: base, StepKey: "name"})
	hooks.OnStepSaved(ctx, &domain.StepEvent{EventBase: base, StepKey: "name"})
	hooks.OnStepRejected(ctx, &domain.StepEvent{EventBase: base, StepKey: "age", Errors: map[string][]string{
		"age": {"can't be blank", "is not a number"},
	}})
	hooks.OnComplete(ctx, &domain.CompleteEvent{EventBase: base, StepKey: "postcode"})

	expected := `
# HELP stepwise_steps_saved_total Steps whose submission passed validation and was written to the store.
# TYPE stepwise_steps_saved_total counter
stepwise_steps_saved_total{step="name",wizard="signup"} 2
# HELP stepwise_field_errors_total Validation messages per attribute in rejected submissions.
# TYPE stepwise_field_errors_total counter
stepwise_field_errors_total{attribute="age",step="age",wizard="signup"} 2
# HELP stepwise_completions_total Wizards completed.
# TYPE stepwise_completions_total counter
stepwise_completions_total{wizard="signup"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"stepwise_steps_saved_total", "stepwise_field_errors_total", "stepwise_completions_total"))

	n, err := testutil.GatherAndCount(reg, "stepwise_steps_rejected_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMetrics_MergesWithOtherHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	var audited []string
	hooks := domain.MergeHooks(m.Hooks(), domain.LifecycleHooks{
		OnComplete: func(_ context.Context, e *domain.CompleteEvent) { audited = append(audited, e.SessionID) },
	})

	hooks.OnComplete(context.Background(), &domain.CompleteEvent{EventBase: domain.EventBase{SessionID: "s1", Wizard: "w"}})
	assert.Equal(t, []string{"s1"}, audited)

	n, err := testutil.GatherAndCount(reg, "stepwise_completions_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
