package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		data := map[string]any{
			"name": "Joe",
			"age":  35,
			"note": nil,
		}

		err := store.Save(ctx, sessionID, data)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "Joe", loaded["name"])
		// Serializing media may hand numbers back as json.Number or float64.
		assert.Equal(t, "35", fmt.Sprint(loaded["age"]))
		assert.Contains(t, loaded, "note", "explicit nil values must survive a round trip")
	})

	t.Run("Isolation", func(t *testing.T) {
		data := map[string]any{"name": "Jane"}
		require.NoError(t, store.Save(ctx, sessionID, data))

		data["name"] = "mutated after save"
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "Jane", loaded["name"])

		loaded["name"] = "mutated after load"
		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "Jane", again["name"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, map[string]any{"name": "Joe"})
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, map[string]any{"k": "v"})
		_ = store.Save(ctx, id2, map[string]any{"k": "v"})

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunStoreContract verifies the get/set/purge behaviour of a Store.
// The store must be empty when passed in.
func RunStoreContract(t *testing.T, store Store) {
	t.Run("Absent key", func(t *testing.T) {
		v, ok := store.Get("missing")
		assert.False(t, ok)
		assert.Nil(t, v)
	})

	t.Run("Set then Get", func(t *testing.T) {
		store.Set("name", "Joe")
		store.Set("age", 35)

		v, ok := store.Get("name")
		assert.True(t, ok)
		assert.Equal(t, "Joe", v)

		store.Set("name", "Jane")
		v, _ = store.Get("name")
		assert.Equal(t, "Jane", v, "writes are visible to the next read")
	})

	t.Run("Explicit nil is present", func(t *testing.T) {
		store.Set("postcode", nil)
		v, ok := store.Get("postcode")
		assert.True(t, ok)
		assert.Nil(t, v)
	})

	t.Run("Purge", func(t *testing.T) {
		store.Purge()
		for _, k := range []string{"name", "age", "postcode"} {
			_, ok := store.Get(k)
			assert.False(t, ok, "key %q should be gone after purge", k)
		}
	})
}
