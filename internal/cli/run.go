package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/internal/presentation/tui"
	"github.com/aretw0/stepwise/pkg/runner"
	"golang.org/x/term"
)

// RunOptions configures an interactive session.
type RunOptions struct {
	SessionID string
	// StartKey skips resume detection and opens the given step.
	StartKey string
	// Plain disables the banner and markdown rendering even on a terminal.
	Plain bool
	In    io.Reader
	Out   io.Writer
}

// RunSession walks one session through the wizard on the terminal.
// Quitting, EOF and Ctrl+C all leave the session stored and exit cleanly.
func RunSession(ctx context.Context, app *App, opts RunOptions) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.SessionID == "" {
		return fmt.Errorf("a session id is required")
	}

	interactive := !opts.Plain && isTerminal(opts.In) && isTerminal(opts.Out)
	var handlerOpts []runner.TextHandlerOption
	if interactive {
		tui.PrintBanner(opts.Out, stepwise.Version)
		handlerOpts = append(handlerOpts, runner.WithTextHandlerRenderer(tui.NewRenderer()))
	}

	sigCtx := NewSignalContext(ctx)
	defer sigCtx.Cancel()

	handler := runner.NewTextHandler(opts.In, opts.Out, handlerOpts...)
	defer handler.Close()

	r := runner.NewRunner(app.Engine,
		runner.WithHandler(handler),
		runner.WithStartKey(opts.StartKey),
		runner.WithLogger(app.Logger),
	)

	app.Logger.Info("Session Started", "wizard", app.Registry.Name(), "session_id", opts.SessionID)
	res, err := r.Run(sigCtx, opts.SessionID)

	if sigCtx.Signal() == os.Interrupt {
		fmt.Fprintln(opts.Out, "[CTRL+C]")
	}
	if res != nil && !res.Completed && handleExecutionError(err) == nil {
		printSystemMessage(opts.Out, "Session '%s' saved at '%s'. Run again to resume.", opts.SessionID, res.Key)
	}
	return handleExecutionError(err)
}

// isTerminal reports whether v is a file attached to a terminal.
func isTerminal(v any) bool {
	f, ok := v.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}
