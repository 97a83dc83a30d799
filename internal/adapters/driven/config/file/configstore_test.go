package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_WithNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	store, err := NewConfigStore(dir)

	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.provider", "gemini"))

	val, ok := store.Get("llm.provider")
	assert.True(t, ok)
	assert.Equal(t, "gemini", val)
	assert.Equal(t, "gemini", store.GetString("llm.provider"))
}

func TestConfigStore_Get_NotFound(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	_, ok := store.Get("missing")
	assert.False(t, ok)
	assert.Empty(t, store.GetString("missing"))
	assert.Zero(t, store.GetInt("missing"))
	assert.Zero(t, store.GetFloat("missing"))
	assert.False(t, store.GetBool("missing"))
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("pipeline.top_k", 8))
	require.NoError(t, store.Set("pipeline.speaker_breaks", true))
	require.NoError(t, store.Set("llm.requests_per_second", 1.5))

	assert.Equal(t, 8, store.GetInt("pipeline.top_k"))
	assert.True(t, store.GetBool("pipeline.speaker_breaks"))
	assert.InDelta(t, 1.5, store.GetFloat("llm.requests_per_second"), 0.0001)
	assert.InDelta(t, 8.0, store.GetFloat("pipeline.top_k"), 0.0001)
	assert.Empty(t, store.GetString("pipeline.top_k"))
}

func TestConfigStore_Persistence(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store.Set("llm.provider", "ollama"))
	require.NoError(t, store.Set("llm.model", "llama3.2"))
	require.NoError(t, store.Set("pipeline.max_entries_per_batch", 10))

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "ollama", reloaded.GetString("llm.provider"))
	assert.Equal(t, "llama3.2", reloaded.GetString("llm.model"))
	assert.Equal(t, 10, reloaded.GetInt("pipeline.max_entries_per_batch"))
}

func TestConfigStore_WritesTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.provider", "gemini"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[llm]")
	assert.Contains(t, string(data), "provider = 'gemini'")
}

func TestConfigStore_ReadsHandWrittenFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := "[llm]\nprovider = \"openai\"\nrequests_per_second = 2\n\n[pipeline]\nspeaker_breaks = false\n"
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "openai", store.GetString("llm.provider"))
	assert.InDelta(t, 2.0, store.GetFloat("llm.requests_per_second"), 0.0001)
	val, ok := store.Get("pipeline.speaker_breaks")
	assert.True(t, ok)
	assert.Equal(t, false, val)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("llm.api_key", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Load_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("not = [valid"), 0600))

	_, err := NewConfigStore(tmpDir)
	assert.Error(t, err)
}

func TestConfigStore_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), nil, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	_, ok := store.Get("anything")
	assert.False(t, ok)
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("pipeline.top_k", n)
			_ = store.GetInt("pipeline.top_k")
		}(i)
	}
	wg.Wait()

	_, ok := store.Get("pipeline.top_k")
	assert.True(t, ok)
}

func TestNestMap(t *testing.T) {
	nested := nestMap(map[string]any{
		"llm.provider":   "gemini",
		"llm.model":      "m",
		"pipeline.top_k": 8,
		"plain":          true,
	})

	llm, ok := nested["llm"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "gemini", llm["provider"])
	assert.Equal(t, true, nested["plain"])
	assert.Equal(t, flattenMap(nested, ""), map[string]any{
		"llm.provider":   "gemini",
		"llm.model":      "m",
		"pipeline.top_k": 8,
		"plain":          true,
	})
}
