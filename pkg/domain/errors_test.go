package domain_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestUnknownStepError_Is(t *testing.T) {
	err := domain.NewUnknownStep("signup", "missing")

	assert.ErrorIs(t, err, domain.ErrUnknownStep)
	assert.ErrorIs(t, fmt.Errorf("find: %w", err), domain.ErrUnknownStep)
	assert.NotErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Equal(t, `unknown step "missing" in wizard "signup"`, err.Error())

	var target *domain.UnknownStepError
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, "missing", target.Key)
}

func TestMergeHooks(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{
		OnStepSaved: func(ctx context.Context, e *domain.StepEvent) { calls = append(calls, "a:"+e.StepKey) },
	}
	b := domain.LifecycleHooks{
		OnStepSaved: func(ctx context.Context, e *domain.StepEvent) { calls = append(calls, "b:"+e.StepKey) },
		OnComplete:  func(ctx context.Context, e *domain.CompleteEvent) { calls = append(calls, "b:done") },
	}

	merged := domain.MergeHooks(a, b)
	merged.OnStepSaved(context.Background(), &domain.StepEvent{StepKey: "age"})
	merged.OnStepRejected(context.Background(), &domain.StepEvent{StepKey: "age"})
	merged.OnComplete(context.Background(), &domain.CompleteEvent{})

	assert.Equal(t, []string{"a:age", "b:age", "b:done"}, calls)
}
