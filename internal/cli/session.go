package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/stepwise/pkg/persistence/middleware"
)

// ListSessions prints the ids of the wizard's stored sessions.
func ListSessions(ctx context.Context, app *App, w io.Writer) error {
	keys, err := app.Store.List(ctx)
	if err != nil {
		return fmt.Errorf("error listing sessions: %w", err)
	}

	prefix := app.Engine.StorageKey("")
	var ids []string
	for _, k := range keys {
		if id, ok := strings.CutPrefix(k, prefix); ok && id != "" {
			ids = append(ids, id)
		}
	}

	if len(ids) == 0 {
		fmt.Fprintln(w, "No active sessions found.")
		return nil
	}
	fmt.Fprintln(w, "Active Sessions:")
	for _, id := range ids {
		fmt.Fprintln(w, "- "+id)
	}
	return nil
}

// InspectSession prints a session's stored answers as JSON. Attributes of steps that
// contain personal details are masked unless reveal is set.
func InspectSession(ctx context.Context, app *App, w io.Writer, sessionID string, reveal bool) error {
	store := app.Store
	if !reveal {
		store = middleware.Chain(store, middleware.NewRedactionMiddleware(
			middleware.ExactKeys(app.Registry.PersonalAttributes()),
		))
	}

	data, err := store.Load(ctx, app.Engine.StorageKey(sessionID))
	if err != nil {
		return fmt.Errorf("error loading session '%s': %w", sessionID, err)
	}

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling session: %w", err)
	}
	fmt.Fprintln(w, string(out))
	return nil
}

// RemoveSessions purges each session. It keeps going after a failure and reports
// whether every removal succeeded.
func RemoveSessions(ctx context.Context, app *App, w io.Writer, sessionIDs []string) error {
	failed := 0
	for _, id := range sessionIDs {
		if err := app.Engine.Reset(ctx, id); err != nil {
			fmt.Fprintf(w, "Error removing '%s': %v\n", id, err)
			failed++
			continue
		}
		fmt.Fprintf(w, "Removed session '%s'\n", id)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d sessions could not be removed", failed, len(sessionIDs))
	}
	return nil
}
