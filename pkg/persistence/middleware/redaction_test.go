package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/stepwise/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactionMiddleware_MasksOnLoadOnly(t *testing.T) {
	underlying := NewMockStore()
	redacted := middleware.NewRedactionMiddleware([]string{"password", "ssn"})(underlying)
	ctx := context.Background()

	data := map[string]any{
		"username":      "jdoe",
		"user_password": "secret123",
		"details": map[string]any{
			"address":    "123 St",
			"ssn_number": "999-99-9999",
		},
	}
	require.NoError(t, redacted.Save(ctx, "s1", data))

	stored, err := underlying.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "secret123", stored["user_password"], "stored data is intact")

	loaded, err := redacted.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", loaded["username"])
	assert.Equal(t, middleware.Mask, loaded["user_password"])
	assert.Equal(t, middleware.Mask, loaded["details"].(map[string]any)["ssn_number"])
	assert.Equal(t, "123 St", loaded["details"].(map[string]any)["address"])

	again, _ := underlying.Load(ctx, "s1")
	assert.Equal(t, "999-99-9999", again["details"].(map[string]any)["ssn_number"], "masking works on a copy")
}

func TestRedactionMiddleware_ExactKeys(t *testing.T) {
	underlying := NewMockStore()
	redacted := middleware.NewRedactionMiddleware(middleware.ExactKeys([]string{"email", "a.b"}))(underlying)
	ctx := context.Background()

	require.NoError(t, underlying.Save(ctx, "s1", map[string]any{
		"email":        "joe@example.com",
		"email_opt_in": true,
		"a.b":          "x",
		"axb":          "y",
		"phone":        nil,
	}))

	loaded, err := redacted.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, loaded["email"])
	assert.Equal(t, true, loaded["email_opt_in"])
	assert.Equal(t, middleware.Mask, loaded["a.b"])
	assert.Equal(t, "y", loaded["axb"])
}

func TestRedactionMiddleware_LeavesNilUnmasked(t *testing.T) {
	underlying := NewMockStore()
	redacted := middleware.NewRedactionMiddleware([]string{"^phone$"})(underlying)
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, "s1", map[string]any{"phone": nil}))

	loaded, err := redacted.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Contains(t, loaded, "phone")
	assert.Nil(t, loaded["phone"])
}

func TestChain(t *testing.T) {
	underlying := NewMockStore()
	key := generateKey(t)
	store := middleware.Chain(underlying,
		middleware.NewRedactionMiddleware([]string{"^email$"}),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}),
	)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", map[string]any{"email": "joe@example.com", "name": "Joe"}))

	stored, _ := underlying.Load(ctx, "s1")
	assert.Contains(t, stored, middleware.EnvelopeKey)

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, loaded["email"], "redaction is outermost and sees decrypted data")
	assert.Equal(t, "Joe", loaded["name"])
}
