package ports

import "context"

// Store is the key-value façade shared by a wizard and its steps for one request.
// It performs no validation and no typing; writes are visible to the next read.
type Store interface {
	// Get returns the value stored under key, and whether it was present.
	Get(key string) (any, bool)

	// Set stores value under key.
	Set(key string, value any)

	// Purge removes every key.
	Purge()
}

// SessionStore defines the interface for persisting a session's attribute map.
// It is the externally owned medium behind a Store.
type SessionStore interface {
	// Save persists the attributes for a given session ID.
	Save(ctx context.Context, sessionID string, data map[string]any) error

	// Load retrieves the attributes for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (map[string]any, error)

	// Delete removes the attributes for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of the stored sessions.
	List(ctx context.Context) ([]string, error)
}
