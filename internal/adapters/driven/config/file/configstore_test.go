package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfigStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
	assert.Empty(t, store.Keys())
}

func TestNewConfigStore_CreatesNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	_, err := NewConfigStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	_, err := NewConfigStore(filepath.Join(blocker, "sub"))
	assert.Error(t, err)
}

func TestNewConfigStore_CorruptedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("[[[not toml"), 0600))

	_, err := NewConfigStore(dir)
	assert.Error(t, err)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := newTestConfigStore(t)

	require.NoError(t, store.Set("llm.model", "mistral"))
	require.NoError(t, store.Set("chunking.max_chars", 1200))
	require.NoError(t, store.Set("generation.temperature", 0.2))
	require.NoError(t, store.Set("metrics.enabled", true))

	assert.Equal(t, "mistral", store.GetString("llm.model"))
	assert.Equal(t, 1200, store.GetInt("chunking.max_chars"))
	assert.InDelta(t, 0.2, store.GetFloat("generation.temperature"), 1e-9)
	assert.True(t, store.GetBool("metrics.enabled"))

	// Wrong types read as zero values.
	assert.Equal(t, "", store.GetString("chunking.max_chars"))
	assert.Equal(t, 0, store.GetInt("llm.model"))
	assert.False(t, store.GetBool("llm.model"))

	// Integers widen to floats.
	assert.Equal(t, 1200.0, store.GetFloat("chunking.max_chars"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_PersistsNestedTables(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.provider", "ollama"))
	require.NoError(t, store.Set("llm.model", "mistral"))
	require.NoError(t, store.Set("generation.top_p", 0.9))
	require.NoError(t, store.Set("generation.max_tokens", 200))

	raw, err := os.ReadFile(filepath.Join(dir, ConfigFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[llm]")
	assert.Contains(t, string(raw), "[generation]")

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"generation.max_tokens", "generation.top_p", "llm.model", "llm.provider"}, reopened.Keys())
	assert.Equal(t, "mistral", reopened.GetString("llm.model"))
	assert.Equal(t, 200, reopened.GetInt("generation.max_tokens"))
	assert.InDelta(t, 0.9, reopened.GetFloat("generation.top_p"), 1e-9)
}

func TestConfigStore_LoadsHandWrittenFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[embedding]
provider = "openai"
model = "text-embedding-3-small"

[generation]
temperature = 0
timeout_seconds = 40
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "openai", store.GetString("embedding.provider"))
	assert.Equal(t, 40, store.GetInt("generation.timeout_seconds"))
	assert.Equal(t, 0.0, store.GetFloat("generation.temperature"))
	_, ok := store.Get("generation.temperature")
	assert.True(t, ok)
}

func TestConfigStore_Delete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.model", "llama3"))
	require.NoError(t, store.Set("llm.provider", "ollama"))

	require.NoError(t, store.Delete("llm.model"))
	require.NoError(t, store.Delete("never.set"))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"llm.provider"}, reopened.Keys())
}

func TestConfigStore_Set_EmptyKey(t *testing.T) {
	store := newTestConfigStore(t)

	assert.Error(t, store.Set("  ", "x"))
}

func TestConfigStore_Set_ConflictingKeys(t *testing.T) {
	store := newTestConfigStore(t)

	require.NoError(t, store.Set("llm.model", "mistral"))
	assert.Error(t, store.Set("llm", "flat"))

	_, ok := store.Get("llm")
	assert.False(t, ok)
}

func TestConfigStore_Load_NonExistent(t *testing.T) {
	store := newTestConfigStore(t)
	require.NoError(t, store.Set("llm.model", "mistral"))
	require.NoError(t, os.Remove(store.Path()))

	require.NoError(t, store.Load())
	assert.Empty(t, store.Keys())
}

func TestConfigStore_Load_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), nil, 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Empty(t, store.Keys())
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store := newTestConfigStore(t)
	require.NoError(t, store.Set("llm.api_key", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := newTestConfigStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("retrieval.top_k", n)
			_ = store.GetInt("retrieval.top_k")
			_ = store.Keys()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, []string{"retrieval.top_k"}, store.Keys())
}

func TestNestMap(t *testing.T) {
	nested, err := nestMap(map[string]any{
		"a.b":   1,
		"a.c.d": "x",
		"e":     true,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"a": map[string]any{
			"b": 1,
			"c": map[string]any{"d": "x"},
		},
		"e": true,
	}, nested)
	assert.Equal(t, map[string]any{"a.b": 1, "a.c.d": "x", "e": true}, flattenMap(nested, ""))
}
