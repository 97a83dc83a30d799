package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/protokoll/internal/core/ports/driven"
)

func TestConfigStore_InterfaceCompliance(t *testing.T) {
	var _ driven.ConfigStore = NewConfigStore()
}

func TestConfigStore_Set_Update(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("llm.model", "original"))
	require.NoError(t, store.Set("llm.model", "updated"))

	val, ok := store.Get("llm.model")
	assert.True(t, ok)
	assert.Equal(t, "updated", val)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("llm.provider", "gemini")
	_ = store.Set("pipeline.top_k", 8)
	_ = store.Set("pipeline.max_entries_per_batch", int64(12))
	_ = store.Set("pipeline.pages_per_chunk", float64(20))
	_ = store.Set("llm.requests_per_second", 0.5)
	_ = store.Set("pipeline.speaker_breaks", true)

	assert.Equal(t, "gemini", store.GetString("llm.provider"))
	assert.Equal(t, 8, store.GetInt("pipeline.top_k"))
	assert.Equal(t, 12, store.GetInt("pipeline.max_entries_per_batch"))
	assert.Equal(t, 20, store.GetInt("pipeline.pages_per_chunk"))
	assert.InDelta(t, 0.5, store.GetFloat("llm.requests_per_second"), 0.0001)
	assert.InDelta(t, 8.0, store.GetFloat("pipeline.top_k"), 0.0001)
	assert.True(t, store.GetBool("pipeline.speaker_breaks"))
}

func TestConfigStore_WrongTypes(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("k", []string{"x"})

	assert.Empty(t, store.GetString("k"))
	assert.Zero(t, store.GetInt("k"))
	assert.Zero(t, store.GetFloat("k"))
	assert.False(t, store.GetBool("k"))
}

func TestConfigStore_NotFound(t *testing.T) {
	store := NewConfigStore()

	_, ok := store.Get("missing")
	assert.False(t, ok)
	assert.Empty(t, store.GetString("missing"))
}

func TestConfigStore_NoOps(t *testing.T) {
	store := NewConfigStore()

	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_Concurrency_ReadWriteMix(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("pipeline.top_k", n)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("pipeline.top_k")
		}()
	}
	wg.Wait()

	_, ok := store.Get("pipeline.top_k")
	assert.True(t, ok)
}
