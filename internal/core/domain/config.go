package domain

import "time"

// Config holds the tunable pipeline parameters.
// Values come from the config store with these defaults.
type Config struct {
	// MaxContextTokens is the hard token budget for assembled prompts.
	MaxContextTokens int

	// TopKRetrieval is the number of chunks kept after reranking.
	// Retrieval fetches twice this many candidates for the reranker.
	TopKRetrieval int

	// MaxHistoryTurns bounds the conversation window passed to the prompt.
	MaxHistoryTurns int

	// EmbedTimeout bounds one external embedding call.
	EmbedTimeout time.Duration

	// GenerateTimeout bounds one external LLM call.
	GenerateTimeout time.Duration

	// MinConfidence is the validation floor for generated answers.
	MinConfidence float64

	// MinAnswerLength is the validation floor in characters.
	MinAnswerLength int

	// MaxAnswerLength is the formatting ceiling in characters.
	MaxAnswerLength int

	// CacheTTL is the base cache lifetime. The answer cache uses half of
	// it, the chunk cache twice it.
	CacheTTL time.Duration

	// EmbeddingCacheSize bounds the embedding cache item count.
	EmbeddingCacheSize int

	// AnswerCacheSize bounds the answer cache item count.
	AnswerCacheSize int

	// ChunkCacheSize bounds the chunk cache item count.
	ChunkCacheSize int

	// IndexWorkers is the background ingestion worker count.
	IndexWorkers int

	// IndexQueueSize is the ingestion task queue capacity.
	IndexQueueSize int

	// ChunkSize is the ingestion chunk size in characters.
	ChunkSize int

	// ChunkOverlap is the ingestion chunk overlap in characters.
	ChunkOverlap int
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		MaxContextTokens:   4000,
		TopKRetrieval:      5,
		MaxHistoryTurns:    5,
		EmbedTimeout:       15 * time.Second,
		GenerateTimeout:    30 * time.Second,
		MinConfidence:      0.3,
		MinAnswerLength:    10,
		MaxAnswerLength:    2000,
		CacheTTL:           time.Hour,
		EmbeddingCacheSize: 1000,
		AnswerCacheSize:    500,
		ChunkCacheSize:     2000,
		IndexWorkers:       2,
		IndexQueueSize:     32,
		ChunkSize:          1000,
		ChunkOverlap:       200,
	}
}
