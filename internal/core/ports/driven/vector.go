package driven

import (
	"context"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// VectorIndex stores chunk embeddings per collection and serves
// nearest-neighbour search by cosine similarity.
//
// All operations fail closed: if the backend is unreachable, Search
// returns an empty slice and Store/Delete return false. Callers treat
// an empty result as "no grounding available", never as an error.
type VectorIndex interface {
	// Store inserts chunks with their embeddings for a document.
	// Returns false when len(chunks) != len(embeddings) or on backend failure.
	Store(ctx context.Context, chunks []domain.Chunk, embeddings [][]float32, documentID, collectionID string) bool

	// Search returns the topK most similar candidates in the collection,
	// optionally filtered to one document (documentID != ""). Ties are
	// broken by insertion order.
	Search(ctx context.Context, query []float32, collectionID, documentID string, topK int) []domain.RetrievalCandidate

	// Delete removes all chunks for a document. Idempotent: deleting a
	// document with no stored chunks succeeds trivially.
	Delete(ctx context.Context, documentID, collectionID string) bool

	// Count returns the number of stored chunks in a collection. An
	// empty collectionID counts across all collections.
	Count(ctx context.Context, collectionID string) int

	// Close releases resources.
	Close() error
}
