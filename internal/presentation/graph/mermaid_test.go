package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/stepwise/internal/presentation/graph"
	"github.com/aretw0/stepwise/pkg/step"
)

func skip(*step.Step) bool { return false }

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		defs     []*step.Definition
		overlay  *graph.GraphOverlay
		contains []string
		excludes []string
	}{
		{
			name: "First Step Shape",
			defs: []*step.Definition{{Key: "name"}, {Key: "age"}},
			contains: []string{
				`name(["Name"])`,
				`age["Age"]`,
				"name --> age",
			},
		},
		{
			name: "Personal Step Shape",
			defs: []*step.Definition{{Key: "name"}, {Key: "contact", ContainsPersonalDetails: true}},
			contains: []string{
				`contact[/"Contact"/]`,
			},
		},
		{
			name: "ID Sanitization And Title Escaping",
			defs: []*step.Definition{{Key: "step.one"}, {Key: "hyphen-ated", Title: `Say "hi"`}},
			contains: []string{
				`step_one(["Step.one"])`,
				`hyphen_ated["Say 'hi'"]`,
			},
		},
		{
			name: "Conditional Bypass",
			defs: []*step.Definition{{Key: "age"}, {Key: "guardian", Skip: skip}, {Key: "contact"}},
			contains: []string{
				`guardian["Guardian <br/> (conditional)"]`,
				`age -. "skip" .-> contact`,
			},
		},
		{
			name:     "Conditional Last Step Has No Bypass",
			defs:     []*step.Definition{{Key: "age"}, {Key: "guardian", Skip: skip}},
			excludes: []string{".->"},
		},
		{
			name:    "Overlay",
			defs:    []*step.Definition{{Key: "name"}, {Key: "age"}},
			overlay: &graph.GraphOverlay{AnsweredSteps: []string{"name", "name"}, CurrentStep: "age"},
			contains: []string{
				"class name answered;",
				"class age current;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.defs, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("GenerateMermaid() = \n%v\nUnwanted substring: %v", got, unwanted)
				}
			}
			if strings.Count(got, "class name answered;") > 1 {
				t.Errorf("answered steps should be deduplicated:\n%v", got)
			}
		})
	}
}
