package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
)

var _ ports.SessionStore = (*Store)(nil)

// DefaultDir is used when NewStore is given an empty path.
var DefaultDir = filepath.Join(".stepwise", "sessions")

// Store implements ports.SessionStore on the local filesystem, one JSON file per session.
type Store struct {
	BasePath string
}

// NewStore creates a Store rooted at basePath.
func NewStore(basePath string) *Store {
	if basePath == "" {
		basePath = DefaultDir
	}
	return &Store{BasePath: basePath}
}

func (f *Store) path(sessionID string) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("sessionID cannot be empty")
	}
	if strings.ContainsAny(sessionID, `/\`) || sessionID == "." || sessionID == ".." {
		return "", fmt.Errorf("invalid sessionID %q", sessionID)
	}
	return filepath.Join(f.BasePath, sessionID+".json"), nil
}

// Save writes the data to <BasePath>/<sessionID>.json via a temp file and rename.
func (f *Store) Save(ctx context.Context, sessionID string, data map[string]any) error {
	filePath, err := f.path(sessionID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure session directory: %w", err)
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, filePath); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Load reads the session file. Numbers decode as json.Number so integer answers are
// not widened to float64 before attribute coercion.
func (f *Store) Load(ctx context.Context, sessionID string) (map[string]any, error) {
	filePath, err := f.path(sessionID)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if data == nil {
		data = make(map[string]any)
	}
	return data, nil
}

// Delete removes the session file. Deleting an unknown session is not an error.
func (f *Store) Delete(ctx context.Context, sessionID string) error {
	filePath, err := f.path(sessionID)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// List returns the session ids found in BasePath, sorted.
func (f *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := []string{}
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			sessions = append(sessions, strings.TrimSuffix(entry.Name(), ".json"))
		}
	}
	sort.Strings(sessions)
	return sessions, nil
}
