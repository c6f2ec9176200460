package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore(t *testing.T) {
	store := NewConfigStore()
	require.NotNil(t, store)
	assert.Empty(t, store.Keys())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("llm.model", "mistral"))
	require.NoError(t, store.Set("generation.max_tokens", int64(200)))

	assert.Equal(t, "mistral", store.GetString("llm.model"))
	assert.Equal(t, 200, store.GetInt("generation.max_tokens"))
}

func TestConfigStore_Delete(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("store.backend", "qdrant"))

	require.NoError(t, store.Delete("store.backend"))
	_, ok := store.Get("store.backend")
	assert.False(t, ok)

	require.NoError(t, store.Delete("store.backend"))
}

func TestConfigStore_KeysSorted(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("llm.model", "m"))
	require.NoError(t, store.Set("chunker.max_chars", 1200))
	require.NoError(t, store.Set("embedding.model", "e"))

	assert.Equal(t, []string{"chunker.max_chars", "embedding.model", "llm.model"}, store.Keys())
}

func TestConfigStore_SaveLoadNoOp(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("k", "v"))
	require.NoError(t, store.Save())
	require.NoError(t, store.Load())
	assert.Equal(t, "v", store.GetString("k"))
}
