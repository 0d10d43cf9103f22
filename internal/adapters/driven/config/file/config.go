package file

import (
	"time"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

// PipelineConfig derives the typed pipeline configuration from a config
// store. Missing keys keep their defaults, so a partial config.toml is
// always valid.
func PipelineConfig(store driven.ConfigStore) domain.Config {
	cfg := domain.DefaultConfig()

	setInt(store, "pipeline.max_context_tokens", &cfg.MaxContextTokens)
	setInt(store, "pipeline.top_k", &cfg.TopKRetrieval)
	setInt(store, "pipeline.max_history_turns", &cfg.MaxHistoryTurns)
	setSeconds(store, "pipeline.embed_timeout_seconds", &cfg.EmbedTimeout)
	setSeconds(store, "pipeline.generate_timeout_seconds", &cfg.GenerateTimeout)
	setFloat(store, "pipeline.min_confidence", &cfg.MinConfidence)
	setInt(store, "pipeline.min_answer_length", &cfg.MinAnswerLength)
	setInt(store, "pipeline.max_answer_length", &cfg.MaxAnswerLength)

	setSeconds(store, "cache.ttl_seconds", &cfg.CacheTTL)
	setInt(store, "cache.embedding_size", &cfg.EmbeddingCacheSize)
	setInt(store, "cache.answer_size", &cfg.AnswerCacheSize)
	setInt(store, "cache.chunk_size", &cfg.ChunkCacheSize)

	setInt(store, "indexing.workers", &cfg.IndexWorkers)
	setInt(store, "indexing.queue_size", &cfg.IndexQueueSize)
	setInt(store, "indexing.chunk_size", &cfg.ChunkSize)
	setInt(store, "indexing.chunk_overlap", &cfg.ChunkOverlap)

	return cfg
}

func setInt(store driven.ConfigStore, key string, dst *int) {
	if _, ok := store.Get(key); ok {
		*dst = store.GetInt(key)
	}
}

func setFloat(store driven.ConfigStore, key string, dst *float64) {
	if _, ok := store.Get(key); ok {
		*dst = store.GetFloat(key)
	}
}

func setSeconds(store driven.ConfigStore, key string, dst *time.Duration) {
	if _, ok := store.Get(key); ok {
		*dst = time.Duration(store.GetInt(key)) * time.Second
	}
}
