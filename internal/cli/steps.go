package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/aretw0/stepwise/internal/presentation/graph"
	"github.com/aretw0/stepwise/pkg/adapters/mcp"
	"github.com/aretw0/stepwise/pkg/loader"
)

// Output formats accepted by DescribeSteps.
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatMermaid = "mermaid"
)

// DescribeSteps prints the wizard's step sequence. With a session id the mermaid
// output marks answered steps and the step the session would resume at.
func DescribeSteps(ctx context.Context, app *App, w io.Writer, format, sessionID string) error {
	defs := app.Registry.IndexedSteps()

	switch format {
	case FormatText, "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tKEY\tTITLE\tATTRIBUTES\tFLAGS")
		for i, def := range defs {
			var attrs []string
			for _, f := range def.Attributes {
				name := f.Name
				if f.Required() {
					name += "*"
				}
				attrs = append(attrs, fmt.Sprintf("%s:%s", name, f.Type.Name()))
			}
			var flags []string
			if def.ContainsPersonalDetails {
				flags = append(flags, "personal")
			}
			if def.Skip != nil {
				flags = append(flags, "conditional")
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, def.Key, def.Name(), strings.Join(attrs, " "), strings.Join(flags, ","))
		}
		return tw.Flush()

	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(mcp.Describe(app.Registry))

	case FormatMermaid:
		var overlay *graph.GraphOverlay
		if sessionID != "" {
			review, err := app.Engine.Review(ctx, sessionID)
			if err != nil {
				return fmt.Errorf("error reviewing session '%s': %w", sessionID, err)
			}
			overlay = &graph.GraphOverlay{}
			for _, s := range review.Steps {
				if s.Valid {
					overlay.AnsweredSteps = append(overlay.AnsweredSteps, s.Key)
				}
			}
			if len(review.InvalidKeys) > 0 {
				overlay.CurrentStep = review.InvalidKeys[0]
			}
		}
		_, err := io.WriteString(w, graph.GenerateMermaid(defs, overlay))
		return err

	default:
		return fmt.Errorf("unknown format %q (supported: %s, %s, %s)", format, FormatText, FormatJSON, FormatMermaid)
	}
}

// ValidateFile loads a wizard definition and reports its shape.
func ValidateFile(path string, w io.Writer) error {
	reg, err := loader.Load(path)
	if err != nil {
		return err
	}
	personal := reg.PersonalAttributes()
	fmt.Fprintf(w, "Wizard '%s' is valid: %d steps", reg.Name(), reg.Len())
	if len(personal) > 0 {
		fmt.Fprintf(w, ", personal attributes: %s", strings.Join(personal, ", "))
	}
	fmt.Fprintln(w)
	return nil
}
