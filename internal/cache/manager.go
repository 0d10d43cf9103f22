package cache

import (
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/logger"
)

// Health status values reported by Manager.HealthCheck.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Thresholds for HealthCheck. Hit rate is only judged once a cache has
// seen enough lookups to make the rate meaningful.
const (
	hitRateWarn         = 0.6
	hitRateCritical     = 0.4
	utilizationWarn     = 0.8
	utilizationCritical = 0.9
	minLookupsForRate   = 50
)

// Manager owns the three cache instances used by the answering pipeline
// and exposes typed accessors over them. All methods are best-effort:
// a type mismatch in a cached value is treated as a miss.
type Manager struct {
	embedding *Store
	answer    *Store
	chunk     *Store

	embeddingStats *Stats
	answerStats    *Stats
	chunkStats     *Stats
}

// NewManager builds the embedding, answer and chunk caches from cfg.
// The answer cache lives half as long as the embedding cache and the
// chunk cache twice as long: chunks never change after indexing while
// answers go stale with any context change.
func NewManager(cfg domain.Config) *Manager {
	m := &Manager{
		embeddingStats: NewStats(),
		answerStats:    NewStats(),
		chunkStats:     NewStats(),
	}
	m.embedding = NewStore(RoleEmbedding, cfg.EmbeddingCacheSize, cfg.CacheTTL, m.embeddingStats)
	m.answer = NewStore(RoleAnswer, cfg.AnswerCacheSize, cfg.CacheTTL/2, m.answerStats)
	m.chunk = NewStore(RoleChunk, cfg.ChunkCacheSize, cfg.CacheTTL*2, m.chunkStats)
	return m
}

// GetEmbedding returns a cached embedding for text under model.
func (m *Manager) GetEmbedding(text, model string) ([]float32, bool) {
	v, ok := m.embedding.Get(EmbeddingKey(text, model))
	if !ok {
		return nil, false
	}
	vec, ok := v.([]float32)
	if !ok {
		logger.Warn("cache: embedding entry has unexpected type %T, treating as miss", v)
		return nil, false
	}
	return vec, true
}

// SetEmbedding caches an embedding for text under model.
func (m *Manager) SetEmbedding(text, model string, vector []float32) {
	if len(vector) == 0 {
		return
	}
	m.embedding.Set(EmbeddingKey(text, model), vector, 0)
}

// GetAnswer returns a cached answer for question against documentID in
// the given context. The returned answer is a copy with its metadata
// refreshed to reflect the replay: CacheHit set, timestamp updated and
// processing time zeroed.
func (m *Manager) GetAnswer(documentID, question, fingerprint string) (*domain.StructuredAnswer, bool) {
	v, ok := m.answer.Get(AnswerKey(documentID, question, fingerprint))
	if !ok {
		return nil, false
	}
	cached, ok := v.(*domain.StructuredAnswer)
	if !ok {
		logger.Warn("cache: answer entry has unexpected type %T, treating as miss", v)
		return nil, false
	}
	replay := *cached
	replay.Metadata.CacheHit = true
	replay.Metadata.ProcessingTime = 0
	replay.Metadata.Timestamp = time.Now()
	return &replay, true
}

// SetAnswer caches answer under its question and context fingerprint.
// Fallback answers are never cached: a transient failure must not be
// replayed once the upstream recovers.
func (m *Manager) SetAnswer(documentID, question, fingerprint string, answer *domain.StructuredAnswer) {
	if answer == nil || answer.IsFallback {
		return
	}
	m.answer.Set(AnswerKey(documentID, question, fingerprint), answer, 0)
}

// GetChunks returns all count chunks of documentID, or (nil, false) if
// any single chunk is missing. Partial context would silently skew
// retrieval, so the lookup is all-or-nothing.
func (m *Manager) GetChunks(documentID string, count int) ([]domain.Chunk, bool) {
	if count <= 0 {
		return nil, false
	}
	chunks := make([]domain.Chunk, 0, count)
	for i := 0; i < count; i++ {
		v, ok := m.chunk.Get(ChunkKey(documentID, i))
		if !ok {
			return nil, false
		}
		chunk, ok := v.(domain.Chunk)
		if !ok {
			logger.Warn("cache: chunk entry has unexpected type %T, treating as miss", v)
			return nil, false
		}
		chunks = append(chunks, chunk)
	}
	return chunks, true
}

// SetChunks caches every chunk of a document under its index.
func (m *Manager) SetChunks(documentID string, chunks []domain.Chunk) {
	for _, chunk := range chunks {
		m.chunk.Set(ChunkKey(documentID, chunk.ChunkIndex), chunk, 0)
	}
}

// InvalidateDocument removes every cached chunk and answer belonging to
// documentID. Embeddings are keyed by text, not document, and stay.
func (m *Manager) InvalidateDocument(documentID string) {
	chunkPrefix := fmt.Sprintf("chunk:%s:", documentID)
	for _, key := range m.chunk.Keys() {
		if strings.HasPrefix(key, chunkPrefix) {
			m.chunk.Delete(key)
		}
	}
	answerPrefix := fmt.Sprintf("ans:%s:", documentID)
	for _, key := range m.answer.Keys() {
		if strings.HasPrefix(key, answerPrefix) {
			m.answer.Delete(key)
		}
	}
	logger.Debug("cache: invalidated document %s", documentID)
}

// ClearAll empties all three caches.
func (m *Manager) ClearAll() {
	m.embedding.Clear()
	m.answer.Clear()
	m.chunk.Clear()
	logger.Debug("cache: cleared all instances")
}

// RoleSnapshot pairs one cache's description with its counters.
type RoleSnapshot struct {
	Info  Info     `json:"info"`
	Stats Snapshot `json:"stats"`
}

// Snapshot reports every cache instance for status output.
func (m *Manager) Snapshot() map[Role]RoleSnapshot {
	return map[Role]RoleSnapshot{
		RoleEmbedding: {Info: m.embedding.Info(), Stats: m.embeddingStats.Snapshot()},
		RoleAnswer:    {Info: m.answer.Info(), Stats: m.answerStats.Snapshot()},
		RoleChunk:     {Info: m.chunk.Info(), Stats: m.chunkStats.Snapshot()},
	}
}

// HealthCheck judges the caching layer. Low hit rates and high
// utilization degrade the status; they never make it unhealthy on
// their own unless past the critical thresholds.
func (m *Manager) HealthCheck() (string, []string) {
	status := StatusHealthy
	var notes []string

	worsen := func(to string) {
		if status == StatusHealthy || (status == StatusDegraded && to == StatusUnhealthy) {
			status = to
		}
	}

	for role, snap := range m.Snapshot() {
		lookups := snap.Stats.Hits + snap.Stats.Misses
		if lookups >= minLookupsForRate {
			switch {
			case snap.Stats.HitRate < hitRateCritical:
				notes = append(notes, fmt.Sprintf("%s cache hit rate critically low: %.2f", role, snap.Stats.HitRate))
				worsen(StatusUnhealthy)
			case snap.Stats.HitRate < hitRateWarn:
				notes = append(notes, fmt.Sprintf("%s cache hit rate low: %.2f", role, snap.Stats.HitRate))
				worsen(StatusDegraded)
			}
		}
		switch {
		case snap.Info.Utilization > utilizationCritical:
			notes = append(notes, fmt.Sprintf("%s cache nearly full: %.0f%%", role, snap.Info.Utilization*100))
			worsen(StatusUnhealthy)
		case snap.Info.Utilization > utilizationWarn:
			notes = append(notes, fmt.Sprintf("%s cache filling up: %.0f%%", role, snap.Info.Utilization*100))
			worsen(StatusDegraded)
		}
	}
	return status, notes
}
