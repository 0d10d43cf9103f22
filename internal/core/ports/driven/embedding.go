package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Note: This is separate from VectorIndex which stores and searches vectors.
// EmbeddingService generates vectors; VectorIndex stores them.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts. The batch is
	// best-effort: texts that could not be embedded are returned in the
	// second slice and omitted from the first, position for position.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, []string, error)

	// Dimensions returns the embedding vector size (e.g., 768, 1536).
	// All chunks of a document must be embedded at the same dimension.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	// It participates in embedding cache key derivation.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
