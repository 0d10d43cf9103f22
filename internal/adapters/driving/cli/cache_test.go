package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/lectern/internal/cache"
	"github.com/custodia-labs/lectern/internal/core/domain"
)

func TestCacheStatsCmd(t *testing.T) {
	manager := cache.NewManager(domain.DefaultConfig())
	manager.SetEmbedding("question", "model", []float32{1, 2, 3})
	manager.GetEmbedding("question", "model")
	manager.GetEmbedding("other", "model")

	old := cacheManager
	cacheManager = manager
	defer func() { cacheManager = old }()

	out := executeCommand(t, "cache", "stats")

	assert.Contains(t, out, "embedding:")
	assert.Contains(t, out, "answer:")
	assert.Contains(t, out, "chunk:")
	assert.Contains(t, out, "hit rate:    50.0% (1 hits, 1 misses)")
	assert.Contains(t, out, "Health:")
}

func TestCacheClearCmd(t *testing.T) {
	manager := cache.NewManager(domain.DefaultConfig())
	manager.SetEmbedding("question", "model", []float32{1, 2, 3})

	old := cacheManager
	cacheManager = manager
	defer func() { cacheManager = old }()

	out := executeCommand(t, "cache", "clear")

	assert.Contains(t, out, "All caches cleared.")
	_, ok := manager.GetEmbedding("question", "model")
	assert.False(t, ok)
}

func TestCacheCmd_NoManagerConfigured(t *testing.T) {
	old := cacheManager
	cacheManager = nil
	defer func() { cacheManager = old }()

	rootCmd.SetArgs([]string{"cache", "stats"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	assert.Error(t, err)
}
