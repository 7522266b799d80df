package stepwise

import (
	"github.com/aretw0/stepwise/pkg/schema"
	"github.com/aretw0/stepwise/pkg/step"
	"github.com/aretw0/stepwise/pkg/wizard"
)

// OutcomeKind says what a caller should do after Update.
type OutcomeKind string

const (
	// OutcomeInvalid: re-render the step with Errors.
	OutcomeInvalid OutcomeKind = "invalid"
	// OutcomeAdvance: go to NextKey.
	OutcomeAdvance OutcomeKind = "advance"
	// OutcomeCompleted: the wizard finished and the session was purged.
	OutcomeCompleted OutcomeKind = "completed"
)

// Outcome is the result of Update.
type Outcome struct {
	Kind    OutcomeKind   `json:"kind"`
	Key     string        `json:"key"`
	NextKey string        `json:"next_key,omitempty"`
	Errors  schema.Errors `json:"errors,omitempty"`
	Result  any           `json:"result,omitempty"`
	View    *View         `json:"view,omitempty"`
}

// Attribute describes one input of a step.
type Attribute struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Value    any    `json:"value"`
}

// View is everything needed to render one step.
type View struct {
	Wizard      string      `json:"wizard"`
	Key         string      `json:"key"`
	Title       string      `json:"title"`
	Attributes  []Attribute `json:"attributes"`
	Personal    bool        `json:"personal"`
	Skipped     bool        `json:"skipped"`
	FirstStep   bool        `json:"first_step"`
	LastStep    bool        `json:"last_step"`
	PreviousKey string      `json:"previous_key,omitempty"`
	NextKey     string      `json:"next_key,omitempty"`
	EarlierKeys []string    `json:"earlier_keys"`
	LaterKeys   []string    `json:"later_keys"`
}

func newView(w *wizard.Wizard, s *step.Step) *View {
	v := &View{
		Wizard:      w.Registry().Name(),
		Key:         s.Key(),
		Title:       s.Title(),
		Personal:    s.ContainsPersonalDetails(),
		Skipped:     s.Skipped(),
		FirstStep:   w.FirstStep(),
		LastStep:    w.LastStep(),
		PreviousKey: w.PreviousKey(),
		NextKey:     w.NextKey(),
		EarlierKeys: w.EarlierKeys(),
		LaterKeys:   w.LaterKeys(),
	}
	for _, f := range s.Definition().Attributes {
		v.Attributes = append(v.Attributes, Attribute{
			Name:     f.Name,
			Type:     f.Type.Name(),
			Required: f.Required(),
			Value:    s.Get(f.Name),
		})
	}
	return v
}

// ReviewStep is one row of a Review.
type ReviewStep struct {
	Key      string         `json:"key"`
	Title    string         `json:"title"`
	Personal bool           `json:"personal"`
	Valid    bool           `json:"valid"`
	Answers  map[string]any `json:"answers"`
	// Order follows the step's declared attributes.
	Order []string `json:"order"`
}

// Review lists the answers of every non-skipped step.
type Review struct {
	Wizard      string       `json:"wizard"`
	Steps       []ReviewStep `json:"steps"`
	InvalidKeys []string     `json:"invalid_keys"`
	Complete    bool         `json:"complete"`
}

func newReview(w *wizard.Wizard) *Review {
	r := &Review{Wizard: w.Registry().Name(), InvalidKeys: []string{}}
	invalid := make(map[string]bool)
	for _, s := range w.InvalidSteps() {
		invalid[s.Key()] = true
		r.InvalidKeys = append(r.InvalidKeys, s.Key())
	}
	for _, sa := range w.ReviewableAnswersByStep() {
		r.Steps = append(r.Steps, ReviewStep{
			Key:      sa.Definition.Key,
			Title:    sa.Definition.Name(),
			Personal: sa.Definition.ContainsPersonalDetails,
			Valid:    !invalid[sa.Definition.Key],
			Answers:  sa.Answers,
			Order:    sa.Definition.AttributeNames(),
		})
	}
	r.Complete = len(r.InvalidKeys) == 0
	return r
}
