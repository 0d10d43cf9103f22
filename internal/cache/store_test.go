package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreGetSet(t *testing.T) {
	stats := NewStats()
	store := NewStore(RoleEmbedding, 10, time.Minute, stats)

	_, ok := store.Get("missing")
	assert.False(t, ok)

	store.Set("key", []float32{0.1, 0.2}, 0)
	v, ok := store.Get("key")
	require.True(t, ok)
	assert.Equal(t, []float32{0.1, 0.2}, v)

	snap := stats.Snapshot()
	assert.Equal(t, uint64(1), snap.Hits)
	assert.Equal(t, uint64(1), snap.Misses)
	assert.Equal(t, uint64(1), snap.Sets)
	assert.InDelta(t, 0.5, snap.HitRate, 1e-9)
}

func TestStoreExpiry(t *testing.T) {
	store := NewStore(RoleAnswer, 10, 20*time.Millisecond, NewStats())

	store.Set("key", "value", 0)
	_, ok := store.Get("key")
	require.True(t, ok)

	time.Sleep(60 * time.Millisecond)

	_, ok = store.Get("key")
	assert.False(t, ok)
}

func TestStoreEviction(t *testing.T) {
	stats := NewStats()
	store := NewStore(RoleChunk, 3, time.Minute, stats)

	for i := 0; i < 5; i++ {
		store.Set(fmt.Sprintf("key-%d", i), i, 0)
	}

	assert.Equal(t, 3, store.Size())
	assert.Equal(t, uint64(2), stats.Snapshot().Evictions)

	// Oldest entries are gone, newest survive.
	_, ok := store.Get("key-0")
	assert.False(t, ok)
	_, ok = store.Get("key-4")
	assert.True(t, ok)
}

func TestStoreDelete(t *testing.T) {
	stats := NewStats()
	store := NewStore(RoleChunk, 10, time.Minute, stats)

	assert.False(t, store.Delete("missing"))

	store.Set("key", 1, 0)
	assert.True(t, store.Delete("key"))
	assert.Equal(t, uint64(1), stats.Snapshot().Deletes)

	_, ok := store.Get("key")
	assert.False(t, ok)
}

func TestStoreClear(t *testing.T) {
	store := NewStore(RoleChunk, 10, time.Minute, NewStats())
	store.Set("a", 1, 0)
	store.Set("b", 2, 0)

	store.Clear()
	assert.Equal(t, 0, store.Size())
}

func TestStoreInfo(t *testing.T) {
	store := NewStore(RoleAnswer, 4, 30*time.Minute, NewStats())
	store.Set("a", 1, 0)
	store.Set("b", 2, 0)

	info := store.Info()
	assert.Equal(t, RoleAnswer, info.Role)
	assert.Equal(t, 2, info.Size)
	assert.Equal(t, 4, info.MaxSize)
	assert.InDelta(t, 0.5, info.Utilization, 1e-9)
	assert.InDelta(t, 1800, info.TTLSeconds, 1e-9)
}
