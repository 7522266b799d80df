package wizard_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/schema"
	"github.com/aretw0/stepwise/pkg/step"
	"github.com/aretw0/stepwise/pkg/store"
	"github.com/aretw0/stepwise/pkg/wizard"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skips toggles the skip predicate of the fixture steps per test.
type skips map[string]bool

func testRegistry(t *testing.T, skipped skips) *wizard.Registry {
	t.Helper()
	skipFn := func(key string) func(*step.Step) bool {
		return func(*step.Step) bool { return skipped[key] }
	}
	reg, err := wizard.Define("test",
		&step.Definition{
			Key:        "name",
			Attributes: []schema.Field{{Name: "name", Type: schema.String(), Rules: []schema.Rule{schema.Presence()}}},
			Skip:       skipFn("name"),
		},
		&step.Definition{
			Key:        "age",
			Attributes: []schema.Field{{Name: "age", Type: schema.Int(), Rules: []schema.Rule{schema.Presence()}}},
			Skip:       skipFn("age"),
		},
		&step.Definition{
			Key:        "postcode",
			Attributes: []schema.Field{{Name: "postcode", Type: schema.String(), Rules: []schema.Rule{schema.Presence()}}},
			Skip:       skipFn("postcode"),
		},
	)
	require.NoError(t, err)
	return reg
}

func defaultBacking() map[string]any {
	return map[string]any{"name": "Joe", "age": 35}
}

func newWizard(t *testing.T, reg *wizard.Registry, backing map[string]any, key string, opts ...wizard.Option) *wizard.Wizard {
	t.Helper()
	w, err := wizard.New(reg, store.New(backing), key, opts...)
	require.NoError(t, err)
	return w
}

// countingStore records purges on top of the plain Store.
type countingStore struct {
	*store.Store
	purges int
}

func (c *countingStore) Purge() {
	c.purges++
	c.Store.Purge()
}

func TestRegistry(t *testing.T) {
	reg := testRegistry(t, nil)

	t.Run("IndexedSteps", func(t *testing.T) {
		defs := reg.IndexedSteps()
		require.Len(t, defs, 3)
		assert.Equal(t, "name", defs[0].Key)
		assert.Equal(t, "age", defs[1].Key)
		assert.Equal(t, "postcode", defs[2].Key)
	})

	t.Run("Step", func(t *testing.T) {
		def, err := reg.Step("age")
		require.NoError(t, err)
		assert.Equal(t, "age", def.Key)

		_, err = reg.Step("unknown")
		assert.ErrorIs(t, err, domain.ErrUnknownStep)
	})

	t.Run("KeyIndex", func(t *testing.T) {
		i, err := reg.KeyIndex("age")
		require.NoError(t, err)
		assert.Equal(t, 1, i)

		_, err = reg.KeyIndex("unknown")
		assert.ErrorIs(t, err, domain.ErrUnknownStep)
	})

	t.Run("StepKeys and FirstKey", func(t *testing.T) {
		assert.Equal(t, []string{"name", "age", "postcode"}, reg.StepKeys())
		assert.Equal(t, "name", reg.FirstKey())
		assert.Equal(t, reg.StepKeys()[0], reg.FirstKey())
	})

	t.Run("IndexedSteps is a copy", func(t *testing.T) {
		defs := reg.IndexedSteps()
		defs[0] = nil
		assert.NotNil(t, reg.IndexedSteps()[0])
	})
}

func TestDefine_Rejections(t *testing.T) {
	str := func(name string) schema.Field { return schema.Field{Name: name, Type: schema.String()} }

	_, err := wizard.Define("dup",
		&step.Definition{Key: "a", Attributes: []schema.Field{str("x")}},
		&step.Definition{Key: "a", Attributes: []schema.Field{str("y")}},
	)
	assert.ErrorIs(t, err, domain.ErrDuplicateStep)

	_, err = wizard.Define("collide",
		&step.Definition{Key: "a", Attributes: []schema.Field{str("x")}},
		&step.Definition{Key: "b", Attributes: []schema.Field{str("x")}},
	)
	assert.ErrorIs(t, err, domain.ErrDuplicateAttribute)

	_, err = wizard.Define("empty")
	assert.ErrorIs(t, err, domain.ErrInvalidDefinition)

	_, err = wizard.Define("blank", &step.Definition{})
	assert.ErrorIs(t, err, domain.ErrInvalidDefinition)

	assert.Panics(t, func() { wizard.MustDefine("empty") })
}

func TestRegistry_PersonalAttributes(t *testing.T) {
	reg := wizard.MustDefine("p",
		&step.Definition{Key: "contact", ContainsPersonalDetails: true, Attributes: []schema.Field{
			{Name: "email", Type: schema.String()}, {Name: "phone", Type: schema.String()},
		}},
		&step.Definition{Key: "prefs", Attributes: []schema.Field{{Name: "colour", Type: schema.String()}}},
	)
	assert.Equal(t, []string{"email", "phone"}, reg.PersonalAttributes())
}

func TestRegistry_Field(t *testing.T) {
	reg := testRegistry(t, nil)

	f, ok := reg.Field("age")
	require.True(t, ok)
	assert.Equal(t, "int", f.Type.Name())

	_, ok = reg.Field("missing")
	assert.False(t, ok)
}

func TestWizard_ExportTypesDecodedNumbers(t *testing.T) {
	backing := map[string]any{"name": "Joe", "age": json.Number("35")}
	data := newWizard(t, testRegistry(t, nil), backing, "age").ExportData()
	assert.Equal(t, 35, data["age"])
}

func TestNew(t *testing.T) {
	reg := testRegistry(t, nil)

	w, err := wizard.New(reg, store.New(nil), "name")
	require.NoError(t, err)
	assert.Equal(t, "name", w.CurrentKey())

	w, err = wizard.New(reg, store.New(nil), "")
	require.NoError(t, err)
	assert.Equal(t, "name", w.CurrentKey(), "empty key defaults to the first key")

	_, err = wizard.New(reg, store.New(nil), "unknown")
	assert.ErrorIs(t, err, domain.ErrUnknownStep)

	_, err = wizard.New(nil, store.New(nil), "name")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	_, err = wizard.New(reg, nil, "name")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestWizard_Position(t *testing.T) {
	reg := testRegistry(t, nil)

	assert.True(t, newWizard(t, reg, nil, "name").CanProceed())
	assert.Equal(t, []string{"age", "postcode"}, newWizard(t, reg, nil, "name").LaterKeys())
	assert.Equal(t, []string{"name", "age"}, newWizard(t, reg, nil, "postcode").EarlierKeys())
	assert.Empty(t, newWizard(t, reg, nil, "postcode").LaterKeys())
	assert.Empty(t, newWizard(t, reg, nil, "name").EarlierKeys())
}

func TestWizard_LaterKeysIgnoreSkips(t *testing.T) {
	reg := testRegistry(t, skips{"age": true})
	w := newWizard(t, reg, nil, "name")
	assert.Equal(t, []string{"age", "postcode"}, w.LaterKeys(), "structural order is not filtered")
}

func TestWizard_Find(t *testing.T) {
	reg := testRegistry(t, nil)
	w := newWizard(t, reg, defaultBacking(), "age")

	s, err := w.Find("age")
	require.NoError(t, err)
	assert.Equal(t, "age", s.Key())
	assert.Equal(t, 35, s.Get("age"))

	assert.Equal(t, "age", w.FindCurrentStep().Key())

	_, err = w.Find("unknown")
	assert.ErrorIs(t, err, domain.ErrUnknownStep)
}

func TestWizard_FindIsIdempotent(t *testing.T) {
	reg := testRegistry(t, nil)
	w := newWizard(t, reg, defaultBacking(), "age")

	a, _ := w.Find("name")
	a.AssignAttributes(map[string]any{"name": "unsaved"})
	b, _ := w.Find("name")
	c, _ := w.Find("name")
	assert.Equal(t, b.ReviewableAnswers(), c.ReviewableAnswers())
	assert.Equal(t, "Joe", c.Get("name"), "unsaved assignments do not leak into later finds")
}

func TestWizard_Navigation(t *testing.T) {
	reg := testRegistry(t, nil)
	w := newWizard(t, reg, defaultBacking(), "age")

	t.Run("PreviousKey", func(t *testing.T) {
		key, err := w.PreviousKeyFrom("age")
		require.NoError(t, err)
		assert.Equal(t, "name", key)

		key, err = w.PreviousKeyFrom("name")
		require.NoError(t, err)
		assert.Equal(t, "", key)

		assert.Equal(t, "name", w.PreviousKey())
	})

	t.Run("NextKey", func(t *testing.T) {
		key, err := w.NextKeyFrom("age")
		require.NoError(t, err)
		assert.Equal(t, "postcode", key)

		key, err = w.NextKeyFrom("postcode")
		require.NoError(t, err)
		assert.Equal(t, "", key)

		assert.Equal(t, "postcode", w.NextKey())
	})

	t.Run("unknown origin", func(t *testing.T) {
		_, err := w.NextKeyFrom("unknown")
		assert.ErrorIs(t, err, domain.ErrUnknownStep)
		_, err = w.PreviousKeyFrom("unknown")
		assert.ErrorIs(t, err, domain.ErrUnknownStep)
	})
}

func TestWizard_NavigationIsInverse(t *testing.T) {
	for _, skipped := range []skips{nil, {"age": true}, {"name": true}, {"postcode": true}} {
		reg := testRegistry(t, skipped)
		w := newWizard(t, reg, nil, "")
		for _, a := range reg.StepKeys() {
			if skipped[a] {
				continue
			}
			b, err := w.NextKeyFrom(a)
			require.NoError(t, err)
			if b == "" {
				continue
			}
			back, err := w.PreviousKeyFrom(b)
			require.NoError(t, err)
			assert.Equal(t, a, back, "skips=%v: previous(next(%s))", skipped, a)
		}
	}
}

func TestWizard_Valid(t *testing.T) {
	backing := map[string]any{"age": 30, "postcode": "TE571NG"}

	t.Run("with all steps completed", func(t *testing.T) {
		b := map[string]any{"name": "Joe"}
		for k, v := range backing {
			b[k] = v
		}
		assert.True(t, newWizard(t, testRegistry(t, nil), b, "age").Valid())
	})

	t.Run("with missing step", func(t *testing.T) {
		assert.False(t, newWizard(t, testRegistry(t, nil), backing, "age").Valid())
	})

	t.Run("skipped invalid step does not count", func(t *testing.T) {
		assert.True(t, newWizard(t, testRegistry(t, skips{"name": true}), backing, "age").Valid())
	})
}

func TestWizard_IsComplete(t *testing.T) {
	reg := testRegistry(t, nil)
	full := func() map[string]any {
		return map[string]any{"name": "My Name", "age": 13, "postcode": "MP11PM"}
	}

	t.Run("when on the last step and all the data is valid", func(t *testing.T) {
		assert.True(t, newWizard(t, reg, full(), "postcode").IsComplete())
	})

	t.Run("when on the last step but not all the data are valid", func(t *testing.T) {
		assert.False(t, newWizard(t, reg, map[string]any{"name": "My Name"}, "postcode").IsComplete())
	})

	t.Run("when not on the last step", func(t *testing.T) {
		assert.False(t, newWizard(t, reg, full(), "age").IsComplete())
	})

	t.Run("postcode unset", func(t *testing.T) {
		w := newWizard(t, reg, defaultBacking(), "postcode")
		assert.False(t, w.Valid())
		require.NotNil(t, w.FirstInvalidStep())
		assert.Equal(t, "postcode", w.FirstInvalidStep().Key())
		assert.False(t, w.IsComplete())
	})

	t.Run("fresh store at the first step", func(t *testing.T) {
		w := newWizard(t, reg, map[string]any{}, "name")
		assert.Equal(t, "name", reg.FirstKey())
		assert.Equal(t, "age", w.NextKey())
		assert.False(t, w.IsComplete())
	})
}

func TestWizard_Complete(t *testing.T) {
	reg := testRegistry(t, nil)
	full := func() map[string]any {
		return map[string]any{"name": "My Name", "age": 13, "postcode": "MP11PM"}
	}
	completer := wizard.WithCompleter(func(ctx context.Context, w *wizard.Wizard) (any, error) {
		return "DO_COMPLETE_RAN", nil
	})

	t.Run("when on the last step and all the data is valid", func(t *testing.T) {
		backing := full()
		cs := &countingStore{Store: store.New(backing)}
		w, err := wizard.New(reg, cs, "postcode", completer)
		require.NoError(t, err)

		var results []any
		done, err := w.Complete(context.Background(), func(result any) { results = append(results, result) })

		require.NoError(t, err)
		assert.True(t, done)
		assert.Equal(t, 1, cs.purges)
		assert.Empty(t, backing)
		assert.Equal(t, []any{"DO_COMPLETE_RAN"}, results)
	})

	t.Run("completer reads data before the purge", func(t *testing.T) {
		var seen map[string]any
		w := newWizard(t, reg, full(), "postcode", wizard.WithCompleter(func(ctx context.Context, w *wizard.Wizard) (any, error) {
			seen = w.ExportData()
			return len(seen), nil
		}))

		var result any
		_, err := w.Complete(context.Background(), func(r any) { result = r })
		require.NoError(t, err)
		assert.Equal(t, "MP11PM", seen["postcode"])
		assert.Equal(t, 3, result)
	})

	t.Run("default completer yields nil", func(t *testing.T) {
		w := newWizard(t, reg, full(), "postcode")
		called := 0
		done, err := w.Complete(context.Background(), func(r any) {
			called++
			assert.Nil(t, r)
		})
		require.NoError(t, err)
		assert.True(t, done)
		assert.Equal(t, 1, called)
	})

	t.Run("when not on the last step", func(t *testing.T) {
		backing := full()
		cs := &countingStore{Store: store.New(backing)}
		w, err := wizard.New(reg, cs, "age", completer)
		require.NoError(t, err)

		called := false
		done, err := w.Complete(context.Background(), func(any) { called = true })

		require.NoError(t, err)
		assert.False(t, done)
		assert.Equal(t, 0, cs.purges)
		assert.Len(t, backing, 3)
		assert.False(t, called)
	})

	t.Run("when the completer fails", func(t *testing.T) {
		backing := full()
		cs := &countingStore{Store: store.New(backing)}
		boom := errors.New("submission rejected")
		w, err := wizard.New(reg, cs, "postcode", wizard.WithCompleter(func(context.Context, *wizard.Wizard) (any, error) {
			return nil, boom
		}))
		require.NoError(t, err)

		called := false
		done, err := w.Complete(context.Background(), func(any) { called = true })

		assert.ErrorIs(t, err, boom)
		assert.False(t, done)
		assert.Equal(t, 0, cs.purges, "no partial effects")
		assert.False(t, called)
	})
}

func TestWizard_InvalidSteps(t *testing.T) {
	reg := testRegistry(t, nil)

	w := newWizard(t, reg, map[string]any{"age": 30}, "age")
	var keys []string
	for _, s := range w.InvalidSteps() {
		keys = append(keys, s.Key())
	}
	assert.Equal(t, []string{"name", "postcode"}, keys)

	w = newWizard(t, reg, map[string]any{"name": "test"}, "age")
	require.NotNil(t, w.FirstInvalidStep())
	assert.Equal(t, "age", w.FirstInvalidStep().Key())

	w = newWizard(t, reg, map[string]any{"name": "a", "age": 1, "postcode": "b"}, "age")
	assert.Nil(t, w.FirstInvalidStep())
	assert.Empty(t, w.InvalidSteps())
}

func TestWizard_SkippedSteps(t *testing.T) {
	t.Run("for the first step", func(t *testing.T) {
		w := newWizard(t, testRegistry(t, skips{"age": true}), defaultBacking(), "name")
		assert.True(t, w.FirstStep())
		assert.Equal(t, "postcode", w.NextKey())
	})

	t.Run("for the last step", func(t *testing.T) {
		w := newWizard(t, testRegistry(t, skips{"age": true}), defaultBacking(), "postcode")
		assert.True(t, w.LastStep())
		assert.Equal(t, "name", w.PreviousKey())
	})

	t.Run("when last step skipped", func(t *testing.T) {
		w := newWizard(t, testRegistry(t, skips{"age": true, "postcode": true}), defaultBacking(), "name")
		assert.Equal(t, "", w.NextKey())
		assert.True(t, w.LastStep())
		assert.True(t, w.FirstStep())
	})

	t.Run("with invalid steps", func(t *testing.T) {
		w := newWizard(t, testRegistry(t, skips{"age": true}), map[string]any{"name": "test"}, "age")
		var keys []string
		for _, s := range w.InvalidSteps() {
			keys = append(keys, s.Key())
		}
		assert.Equal(t, []string{"postcode"}, keys)
	})
}

func TestWizard_ReviewableAnswersByStep(t *testing.T) {
	answers := func(w *wizard.Wizard) map[string]map[string]any {
		out := map[string]map[string]any{}
		for _, sa := range w.ReviewableAnswersByStep() {
			out[sa.Definition.Key] = sa.Answers
		}
		return out
	}

	got := answers(newWizard(t, testRegistry(t, nil), defaultBacking(), "age"))
	assert.Equal(t, map[string]any{"name": "Joe"}, got["name"])
	assert.Equal(t, map[string]any{"age": 35}, got["age"])
	assert.Equal(t, map[string]any{"postcode": nil}, got["postcode"])

	t.Run("with skipped step", func(t *testing.T) {
		got := answers(newWizard(t, testRegistry(t, skips{"age": true}), defaultBacking(), "age"))
		assert.Equal(t, map[string]any{"name": "Joe"}, got["name"])
		assert.NotContains(t, got, "age")
		assert.Equal(t, map[string]any{"postcode": nil}, got["postcode"])
	})

	t.Run("ordered by registry", func(t *testing.T) {
		list := newWizard(t, testRegistry(t, nil), defaultBacking(), "age").ReviewableAnswersByStep()
		require.Len(t, list, 3)
		assert.Equal(t, "postcode", list[2].Definition.Key)
	})
}

func TestWizard_ExportData(t *testing.T) {
	data := newWizard(t, testRegistry(t, nil), defaultBacking(), "age").ExportData()
	assert.Equal(t, "Joe", data["name"])
	assert.Equal(t, 35, data["age"])
	want := map[string]any{"name": "Joe", "age": 35, "postcode": nil}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Errorf("ExportData() mismatch (-want +got):\n%s", diff)
	}

	t.Run("with skipped step", func(t *testing.T) {
		data := newWizard(t, testRegistry(t, skips{"age": true}), defaultBacking(), "age").ExportData()
		assert.Equal(t, "Joe", data["name"])
		assert.NotContains(t, data, "age")
		assert.Contains(t, data, "postcode")
	})

	t.Run("unsaved assignments are not exported", func(t *testing.T) {
		w := newWizard(t, testRegistry(t, nil), defaultBacking(), "name")
		s := w.FindCurrentStep()
		s.AssignAttributes(map[string]any{"name": "Jane"})
		assert.Equal(t, "Joe", w.ExportData()["name"])

		require.True(t, s.Save())
		assert.Equal(t, "Jane", w.ExportData()["name"])
	})
}
