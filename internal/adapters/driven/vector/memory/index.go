// Package memory provides an in-memory vector index using cosine similarity.
//
// The index holds every embedding in process memory, partitioned by
// collection. It suits single-node deployments and tests; a server-backed
// index behind the same port replaces it without touching the core.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// entry pairs a stored chunk with its embedding. seq preserves insertion
// order for deterministic tie-breaking.
type entry struct {
	chunk  domain.Chunk
	vector []float32
	seq    uint64
}

// Index is an in-memory cosine-similarity vector index.
type Index struct {
	mu          sync.RWMutex
	collections map[string][]entry
	closed      bool
	nextSeq     uint64
}

// NewIndex creates an empty in-memory vector index.
func NewIndex() *Index {
	return &Index{
		collections: make(map[string][]entry),
	}
}

// Store inserts chunks with their embeddings for a document.
// Returns false when the inputs are inconsistent or the index is closed.
// Re-storing a document replaces its previous entries.
func (idx *Index) Store(_ context.Context, chunks []domain.Chunk, embeddings [][]float32, documentID, collectionID string) bool {
	if documentID == "" || len(chunks) == 0 || len(chunks) != len(embeddings) {
		return false
	}
	for _, e := range embeddings {
		if len(e) == 0 {
			return false
		}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.closed {
		return false
	}

	idx.removeLocked(documentID, collectionID)

	entries := idx.collections[collectionID]
	for i, c := range chunks {
		c.DocumentID = documentID
		c.CollectionID = collectionID
		entries = append(entries, entry{
			chunk:  c,
			vector: embeddings[i],
			seq:    idx.nextSeq,
		})
		idx.nextSeq++
	}
	idx.collections[collectionID] = entries
	return true
}

// Search returns the topK most similar candidates in the collection,
// optionally filtered to one document. An empty query, an unknown
// collection or a closed index all yield an empty slice.
func (idx *Index) Search(_ context.Context, query []float32, collectionID, documentID string, topK int) []domain.RetrievalCandidate {
	if len(query) == 0 || topK <= 0 {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if idx.closed {
		return nil
	}

	entries := idx.collections[collectionID]
	scored := make([]scoredEntry, 0, len(entries))
	for _, e := range entries {
		if documentID != "" && e.chunk.DocumentID != documentID {
			continue
		}
		// Entries stored at a different dimension cannot be compared.
		if len(e.vector) != len(query) {
			continue
		}
		scored = append(scored, scoredEntry{
			entry:      e,
			similarity: cosineSimilarity(query, e.vector),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].similarity != scored[j].similarity {
			return scored[i].similarity > scored[j].similarity
		}
		return scored[i].seq < scored[j].seq
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}

	candidates := make([]domain.RetrievalCandidate, len(scored))
	for i, s := range scored {
		candidates[i] = domain.RetrievalCandidate{
			Chunk:      s.chunk,
			Similarity: s.similarity,
		}
	}
	return candidates
}

type scoredEntry struct {
	entry
	similarity float64
}

// Delete removes all chunks for a document. Idempotent.
func (idx *Index) Delete(_ context.Context, documentID, collectionID string) bool {
	if documentID == "" {
		return false
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.closed {
		return false
	}

	idx.removeLocked(documentID, collectionID)
	return true
}

// Count returns the number of stored chunks in a collection. An empty
// collectionID counts across all collections.
func (idx *Index) Count(_ context.Context, collectionID string) int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if collectionID != "" {
		return len(idx.collections[collectionID])
	}
	total := 0
	for _, entries := range idx.collections {
		total += len(entries)
	}
	return total
}

// Close releases resources. Subsequent operations fail closed.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.closed = true
	idx.collections = make(map[string][]entry)
	return nil
}

// removeLocked drops a document's entries. Caller holds the write lock.
func (idx *Index) removeLocked(documentID, collectionID string) {
	entries := idx.collections[collectionID]
	kept := entries[:0]
	for _, e := range entries {
		if e.chunk.DocumentID != documentID {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		delete(idx.collections, collectionID)
		return
	}
	idx.collections[collectionID] = kept
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// A zero vector on either side scores 0.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
