package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/aretw0/stepwise/pkg/store"
)

// DefaultLockTTL bounds how long a distributed lock outlives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access. Unused lock entries are garbage collected
// by reference counting.
type Manager struct {
	store ports.SessionStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the distributed lock TTL. Defaults to DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager over the given SessionStore.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu, and call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry when it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Load retrieves a session's data. Unknown ids return domain.ErrSessionNotFound.
func (m *Manager) Load(ctx context.Context, sessionID string) (map[string]any, error) {
	var data map[string]any
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		data, err = m.store.Load(ctx, sessionID)
		return err
	})
	return data, err
}

// Save persists a session's data.
func (m *Manager) Save(ctx context.Context, sessionID string, data map[string]any) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, sessionID, data)
	})
}

// Delete removes a session.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// Run loads the session into a Store, runs fn with it, and writes the data back when fn
// succeeded and changed it. A missing session starts empty. A Store left empty (for example
// after a completed wizard purged it) deletes the session instead of saving it.
func (m *Manager) Run(ctx context.Context, sessionID string, fn func(ctx context.Context, s *store.Store) error) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		data, err := m.store.Load(ctx, sessionID)
		if err != nil {
			if !errors.Is(err, domain.ErrSessionNotFound) {
				return fmt.Errorf("failed to load session %q: %w", sessionID, err)
			}
			data = make(map[string]any)
		}

		s := store.New(data)
		if err := fn(ctx, s); err != nil {
			return err
		}
		if !s.Dirty() {
			return nil
		}

		if s.Len() == 0 {
			m.logger.Debug("session emptied, deleting", "session_id", sessionID)
			if err := m.store.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
				return fmt.Errorf("failed to delete session %q: %w", sessionID, err)
			}
			return nil
		}
		if err := m.store.Save(ctx, sessionID, s.Data()); err != nil {
			return fmt.Errorf("failed to save session %q: %w", sessionID, err)
		}
		return nil
	})
}

// WithLock executes fn while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
