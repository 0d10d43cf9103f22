package file

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

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

func TestConfigStore_SetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("test_key", "test_value"))

	val, ok := store.Get("test_key")
	assert.True(t, ok)
	assert.Equal(t, "test_value", val)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("string_key", "hello"))
	require.NoError(t, store.Set("int_key", 42))
	require.NoError(t, store.Set("float_key", 0.65))
	require.NoError(t, store.Set("bool_key", true))

	assert.Equal(t, "hello", store.GetString("string_key"))
	assert.Equal(t, 42, store.GetInt("int_key"))
	assert.InDelta(t, 0.65, store.GetFloat("float_key"), 1e-9)
	assert.True(t, store.GetBool("bool_key"))

	// Missing keys yield zero values.
	assert.Equal(t, "", store.GetString("missing"))
	assert.Equal(t, 0, store.GetInt("missing"))
	assert.InDelta(t, 0.0, store.GetFloat("missing"), 1e-9)
	assert.False(t, store.GetBool("missing"))

	// Wrong types yield zero values.
	assert.Equal(t, "", store.GetString("int_key"))
	assert.Equal(t, 0, store.GetInt("string_key"))

	// Integers widen to float.
	assert.InDelta(t, 42.0, store.GetFloat("int_key"), 1e-9)
}

func TestConfigStore_PersistsAcrossReopen(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store.Set("pipeline.top_k", 7))
	require.NoError(t, store.Set("cache.ttl_seconds", 1800))

	reopened, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	// TOML round-trips integers as int64; GetInt normalises.
	assert.Equal(t, 7, reopened.GetInt("pipeline.top_k"))
	assert.Equal(t, 1800, reopened.GetInt("cache.ttl_seconds"))
}

func TestConfigStore_LoadFlattensNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	content := `
[pipeline]
top_k = 3
min_confidence = 0.4

[cache]
ttl_seconds = 600
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, 3, store.GetInt("pipeline.top_k"))
	assert.InDelta(t, 0.4, store.GetFloat("pipeline.min_confidence"), 1e-9)
	assert.Equal(t, 600, store.GetInt("cache.ttl_seconds"))
}

func TestConfigStore_Watch(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reloads atomic.Int32
	require.NoError(t, store.Watch(ctx, func() {
		reloads.Add(1)
	}))

	content := "[pipeline]\ntop_k = 9\n"
	require.NoError(t, os.WriteFile(store.Path(), []byte(content), 0600))

	require.Eventually(t, func() bool {
		return reloads.Load() > 0
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 9, store.GetInt("pipeline.top_k"))
}

func TestPipelineConfig_Defaults(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	cfg := PipelineConfig(store)

	assert.Equal(t, 4000, cfg.MaxContextTokens)
	assert.Equal(t, 5, cfg.TopKRetrieval)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, 2, cfg.IndexWorkers)
}

func TestPipelineConfig_Overrides(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("pipeline.top_k", 8))
	require.NoError(t, store.Set("pipeline.min_confidence", 0.5))
	require.NoError(t, store.Set("cache.ttl_seconds", 120))
	require.NoError(t, store.Set("indexing.workers", 4))

	cfg := PipelineConfig(store)

	assert.Equal(t, 8, cfg.TopKRetrieval)
	assert.InDelta(t, 0.5, cfg.MinConfidence, 1e-9)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 4, cfg.IndexWorkers)

	// Untouched keys keep their defaults.
	assert.Equal(t, 4000, cfg.MaxContextTokens)
}
