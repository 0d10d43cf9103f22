package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

func newTestManager() *Manager {
	return NewManager(domain.DefaultConfig())
}

func TestManagerEmbeddingRoundTrip(t *testing.T) {
	m := newTestManager()

	_, ok := m.GetEmbedding("some text", "nomic-embed-text")
	assert.False(t, ok)

	m.SetEmbedding("some text", "nomic-embed-text", []float32{0.1, 0.2, 0.3})
	vec, ok := m.GetEmbedding("some text", "nomic-embed-text")
	require.True(t, ok)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)

	// Empty vectors are never cached.
	m.SetEmbedding("other text", "nomic-embed-text", nil)
	_, ok = m.GetEmbedding("other text", "nomic-embed-text")
	assert.False(t, ok)
}

func TestManagerAnswerReplayRefreshesMetadata(t *testing.T) {
	m := newTestManager()

	answer := &domain.StructuredAnswer{
		MainText:   "The study used a randomized controlled trial.",
		Confidence: 0.8,
		Metadata: domain.AnswerMetadata{
			DocumentID:     "doc-1",
			ProcessingTime: 1200,
			CacheHit:       false,
		},
	}
	m.SetAnswer("doc-1", "what methods were used?", "abcdef0123456789", answer)

	replay, ok := m.GetAnswer("doc-1", "what methods were used?", "abcdef0123456789")
	require.True(t, ok)
	assert.Equal(t, answer.MainText, replay.MainText)
	assert.True(t, replay.Metadata.CacheHit)
	assert.Zero(t, replay.Metadata.ProcessingTime)
	assert.False(t, replay.Metadata.Timestamp.IsZero())

	// The cached value itself is untouched.
	assert.False(t, answer.Metadata.CacheHit)
}

func TestManagerAnswerContextMismatch(t *testing.T) {
	m := newTestManager()

	answer := &domain.StructuredAnswer{MainText: "answer", Confidence: 0.7}
	// Only the first 8 characters of the fingerprint enter the key, and
	// real fingerprints are md5 digests, so any change shows up there.
	fpA := ContextFingerprint([]domain.RetrievalCandidate{
		{Chunk: domain.Chunk{DocumentID: "doc-1", ChunkIndex: 0, Text: "trial design", Page: 3}},
	})
	fpB := ContextFingerprint([]domain.RetrievalCandidate{
		{Chunk: domain.Chunk{DocumentID: "doc-1", ChunkIndex: 1, Text: "sample size", Page: 5}},
	})
	require.NotEqual(t, fpA[:8], fpB[:8])
	m.SetAnswer("doc-1", "question", fpA, answer)

	// Same question against a different context must miss.
	_, ok := m.GetAnswer("doc-1", "question", fpB)
	assert.False(t, ok)
}

func TestManagerNeverCachesFallbacks(t *testing.T) {
	m := newTestManager()

	fallback := &domain.StructuredAnswer{
		MainText:   "generation is temporarily unavailable",
		Confidence: 0.1,
		IsFallback: true,
	}
	m.SetAnswer("doc-1", "question", "fingerprint", fallback)

	_, ok := m.GetAnswer("doc-1", "question", "fingerprint")
	assert.False(t, ok)
}

func TestManagerChunksAllOrNothing(t *testing.T) {
	m := newTestManager()

	chunks := []domain.Chunk{
		{DocumentID: "doc-1", ChunkIndex: 0, Text: "first"},
		{DocumentID: "doc-1", ChunkIndex: 1, Text: "second"},
		{DocumentID: "doc-1", ChunkIndex: 2, Text: "third"},
	}
	m.SetChunks("doc-1", chunks)

	got, ok := m.GetChunks("doc-1", 3)
	require.True(t, ok)
	assert.Equal(t, chunks, got)

	// Asking for more chunks than were cached is a full miss, not a
	// partial result.
	_, ok = m.GetChunks("doc-1", 4)
	assert.False(t, ok)

	_, ok = m.GetChunks("doc-1", 0)
	assert.False(t, ok)
}

func TestManagerInvalidateDocument(t *testing.T) {
	m := newTestManager()

	m.SetChunks("doc-1", []domain.Chunk{{DocumentID: "doc-1", ChunkIndex: 0, Text: "a"}})
	m.SetChunks("doc-2", []domain.Chunk{{DocumentID: "doc-2", ChunkIndex: 0, Text: "b"}})
	m.SetAnswer("doc-1", "question", "fingerprint", &domain.StructuredAnswer{MainText: "answer"})
	m.SetEmbedding("query text", "nomic-embed-text", []float32{0.5})

	m.InvalidateDocument("doc-1")

	_, ok := m.GetChunks("doc-1", 1)
	assert.False(t, ok)
	_, ok = m.GetAnswer("doc-1", "question", "fingerprint")
	assert.False(t, ok)

	// Other documents and text-keyed embeddings survive.
	_, ok = m.GetChunks("doc-2", 1)
	assert.True(t, ok)
	_, ok = m.GetEmbedding("query text", "nomic-embed-text")
	assert.True(t, ok)
}

func TestManagerClearAll(t *testing.T) {
	m := newTestManager()
	m.SetEmbedding("text", "model", []float32{1})
	m.SetChunks("doc-1", []domain.Chunk{{DocumentID: "doc-1", ChunkIndex: 0}})

	m.ClearAll()

	for _, snap := range m.Snapshot() {
		assert.Equal(t, 0, snap.Info.Size)
	}
}

func TestManagerHealthCheck(t *testing.T) {
	m := newTestManager()

	status, notes := m.HealthCheck()
	assert.Equal(t, StatusHealthy, status)
	assert.Empty(t, notes)

	// Drive the embedding hit rate below the critical threshold with
	// enough lookups for the rate to count.
	for i := 0; i < 60; i++ {
		m.GetEmbedding("never cached", "model")
	}

	status, notes = m.HealthCheck()
	assert.Equal(t, StatusUnhealthy, status)
	require.NotEmpty(t, notes)
	assert.Contains(t, notes[0], "embedding")
}
