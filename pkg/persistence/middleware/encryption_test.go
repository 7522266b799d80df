package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"io"
	"testing"

	"github.com/aretw0/stepwise/pkg/adapters/memory"
	"github.com/aretw0/stepwise/pkg/persistence/middleware"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunSessionStoreContract(t, mw(memory.NewStore()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := NewMockStore()
	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	ctx := context.Background()

	require.NoError(t, secure.Save(ctx, "s1", map[string]any{"email": "joe@example.com", "age": 35}))

	stored, err := underlying.Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotContains(t, stored, "email", "plaintext must not reach the store")
	assert.Len(t, stored, 1)
	assert.Contains(t, stored, middleware.EnvelopeKey)

	loaded, err := secure.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "joe@example.com", loaded["email"])
	assert.Equal(t, json.Number("35"), loaded["age"])
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := NewMockStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	oldStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlying)
	require.NoError(t, oldStore.Save(ctx, "s1", map[string]any{"data": "old"}))

	newStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlying)

	loaded, err := newStore.Load(ctx, "s1")
	require.NoError(t, err, "fallback key decrypts")
	assert.Equal(t, "old", loaded["data"])

	require.NoError(t, newStore.Save(ctx, "s1", map[string]any{"data": "new"}))
	_, err = oldStore.Load(ctx, "s1")
	assert.Error(t, err, "data re-sealed with the new key is unreadable with the old one")
}

func TestEncryptionMiddleware_RejectsPlainSessions(t *testing.T) {
	underlying := NewMockStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, "plain", map[string]any{"name": "Joe"}))

	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, err := secure.Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrNotEncrypted)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	})
}
