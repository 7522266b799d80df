package session

import (
	"context"
	"fmt"
	"testing"
)

type nopStore struct{}

func (nopStore) Save(ctx context.Context, sessionID string, data map[string]any) error { return nil }
func (nopStore) Load(ctx context.Context, sessionID string) (map[string]any, error)   { return nil, nil }
func (nopStore) Delete(ctx context.Context, sessionID string) error                    { return nil }
func (nopStore) List(ctx context.Context) ([]string, error)                            { return nil, nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(nopStore{})
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_ = mgr.Save(ctx, sid, map[string]any{"n": i})
		_ = mgr.Delete(ctx, sid)
	}

	lockCount := len(mgr.locks)
	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
}
