package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/stepwise/pkg/step"
)

// GraphOverlay contains session state to visualize on the graph.
type GraphOverlay struct {
	AnsweredSteps []string
	CurrentStep   string
}

// GenerateMermaid produces a Mermaid flowchart of a wizard's step sequence.
// Shapes:
// - First step: ([Stadium])
// - Personal details: [/Parallelogram/]
// - Default: [Rectangle]
// A step with a skip condition gets a dotted bypass edge from its predecessor
// to its successor. Overlay styles are applied if provided.
func GenerateMermaid(defs []*step.Definition, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for i, def := range defs {
		safeID := sanitizeMermaidID(def.Key)

		opener, closer := "[", "]"
		switch {
		case i == 0:
			opener, closer = "([", "])"
		case def.ContainsPersonalDetails:
			opener, closer = "[/", "/]"
		}

		label := strings.ReplaceAll(def.Name(), "\"", "'")
		if def.Skip != nil {
			label += " <br/> (conditional)"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))

		if i+1 < len(defs) {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", safeID, sanitizeMermaidID(defs[i+1].Key)))
		}
	}

	// Bypass edges go after the main chain so the layout keeps the sequence vertical.
	for i, def := range defs {
		if def.Skip == nil || i == 0 || i+1 >= len(defs) {
			continue
		}
		sb.WriteString(fmt.Sprintf("    %s -. \"skip\" .-> %s\n",
			sanitizeMermaidID(defs[i-1].Key), sanitizeMermaidID(defs[i+1].Key)))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on light fills under either theme.
		sb.WriteString("    classDef answered fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, key := range overlay.AnsweredSteps {
			safeID := sanitizeMermaidID(key)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s answered;\n", safeID))
			}
		}

		if overlay.CurrentStep != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentStep)))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
