package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/custodia-labs/lectern/internal/answer"
	"github.com/custodia-labs/lectern/internal/cache"
	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
	"github.com/custodia-labs/lectern/internal/core/ports/driving"
	"github.com/custodia-labs/lectern/internal/logger"
	"github.com/custodia-labs/lectern/internal/prompt"
)

// Ensure RAGService implements the interface.
var _ driving.AnswerService = (*RAGService)(nil)

// Question preprocessing bounds.
const (
	minQuestionRunes = 2
	maxQuestionRunes = 1000
)

// Generation parameters for the answering call.
const (
	generateMaxTokens   = 1024
	generateTemperature = 0.3
)

// RAGService runs the retrieval-augmented answering pipeline.
type RAGService struct {
	caches           *cache.Manager
	vectorIndex      driven.VectorIndex
	embeddingService driven.EmbeddingService
	llmService       driven.LLMService
	docStore         driven.DocumentStore
	convStore        driven.ConversationStore

	reranker *Reranker
	history  *HistoryFilter

	// mu guards cfg and the helpers derived from it, which can be
	// swapped by Reconfigure on a config reload.
	mu        sync.RWMutex
	cfg       domain.Config
	builder   *prompt.Builder
	processor *answer.Processor
}

// NewRAGService creates the orchestrator. The conversation store is
// optional (can be nil); without it answers are produced single-turn.
func NewRAGService(
	cfg domain.Config,
	caches *cache.Manager,
	vectorIndex driven.VectorIndex,
	embeddingService driven.EmbeddingService,
	llmService driven.LLMService,
	docStore driven.DocumentStore,
) *RAGService {
	return &RAGService{
		cfg:              cfg,
		caches:           caches,
		vectorIndex:      vectorIndex,
		embeddingService: embeddingService,
		llmService:       llmService,
		docStore:         docStore,
		reranker:         NewReranker(),
		history:          NewHistoryFilter(),
		builder:          prompt.NewBuilder(cfg.MaxHistoryTurns),
		processor:        answer.NewProcessor(cfg),
	}
}

// SetConversationStore enables multi-turn context.
func (s *RAGService) SetConversationStore(store driven.ConversationStore) {
	s.convStore = store
}

// Reconfigure swaps the pipeline settings on a config reload and
// rebuilds the helpers derived from them. Cache and indexing pool
// sizing is fixed at startup and unaffected.
func (s *RAGService) Reconfigure(cfg domain.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.builder = prompt.NewBuilder(cfg.MaxHistoryTurns)
	s.processor = answer.NewProcessor(cfg)
	logger.Debug("Pipeline reconfigured: top_k=%d max_context_tokens=%d", cfg.TopKRetrieval, cfg.MaxContextTokens)
}

func (s *RAGService) config() domain.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Ask runs the full pipeline for one question. It never returns an
// error: every failure path degrades to a fallback answer carrying a
// typed error tag in its metadata.
func (s *RAGService) Ask(ctx context.Context, req domain.AskRequest) *domain.StructuredAnswer {
	started := time.Now()
	logger.Section("Question Answering")

	question, ok := preprocessQuestion(req.Question)
	if !ok {
		logger.Debug("Rejected question: %q", req.Question)
		return s.finish(answer.Fallback(domain.FallbackInvalidQuestion, req.Question, req.DocumentID), req, started, 0)
	}
	logger.Debug("Question: %q document=%s session=%s", question, req.DocumentID, req.SessionID)

	s.mu.RLock()
	cfg, builder, processor := s.cfg, s.builder, s.processor
	s.mu.RUnlock()

	topK := req.TopK
	if topK <= 0 {
		topK = cfg.TopKRetrieval
	}

	collectionID := s.resolveCollection(ctx, req)

	// Embedding and history filtering are independent; run both and join.
	var (
		embedding []float32
		embedErr  error
		turns     []domain.Turn
	)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		embedding, embedErr = s.embedQuestion(ctx, question)
	}()
	go func() {
		defer wg.Done()
		turns = s.relevantHistory(ctx, req, question)
	}()
	wg.Wait()

	if embedErr != nil {
		logger.Warn("Question embedding failed: %v", embedErr)
		fb := answer.Fallback(domain.FallbackUpstreamError, question, req.DocumentID)
		return s.finish(fb, req, started, 0)
	}

	candidates := s.vectorIndex.Search(ctx, embedding, collectionID, req.DocumentID, topK*2)
	logger.Debug("Vector search: %d candidates", len(candidates))
	if len(candidates) == 0 {
		fb := answer.Fallback(domain.FallbackNoGrounding, question, req.DocumentID)
		return s.finish(fb, req, started, 0)
	}

	ranked := s.reranker.Rerank(candidates, topK)
	logger.Debug("Reranked to %d candidates", len(ranked))
	if len(ranked) == 0 {
		fb := answer.Fallback(domain.FallbackNoGrounding, question, req.DocumentID)
		return s.finish(fb, req, started, 0)
	}

	fingerprint := cache.ContextFingerprint(ranked)
	if cached, hit := s.caches.GetAnswer(req.DocumentID, question, fingerprint); hit {
		logger.Info("Answer cache hit")
		cached.Metadata.ProcessingTime = time.Since(started)
		s.recordTurns(ctx, req.SessionID, question, cached)
		return cached
	}

	built := builder.Build(question, ranked, turns)
	compressed := prompt.Compress(built, cfg.MaxContextTokens)
	promptTokens := prompt.EstimateTokens(compressed)
	logger.Debug("Prompt: %d estimated tokens", promptTokens)

	raw, err := s.generate(ctx, compressed)
	if err != nil {
		logger.Warn("Generation failed: %v", err)
		fb := answer.Fallback(domain.FallbackUpstreamError, question, req.DocumentID)
		return s.finish(fb, req, started, promptTokens)
	}

	result := processor.Process(raw, ranked, question, req.DocumentID)
	result.Metadata.CollectionID = collectionID
	result.Metadata.SessionID = req.SessionID
	result.Metadata.ContextFingerprint = fingerprint
	result.Metadata.PromptTokens = promptTokens
	result.Metadata.ProcessingTime = time.Since(started)

	s.caches.SetAnswer(req.DocumentID, question, fingerprint, result)
	s.recordTurns(ctx, req.SessionID, question, result)

	logger.Info("Answer produced: confidence=%.2f fallback=%t", result.Confidence, result.IsFallback)
	return result
}

// PresetQuestions suggests starter questions for a document title.
func (s *RAGService) PresetQuestions(title string) []string {
	return prompt.PresetQuestions(title)
}

// Health probes each pipeline component.
func (s *RAGService) Health(ctx context.Context) driving.HealthReport {
	components := make(map[string]driving.ComponentHealth)

	components["embedding"] = probe(func() error { return s.embeddingService.Ping(ctx) })
	components["llm"] = probe(func() error { return s.llmService.Ping(ctx) })

	cacheStatus, notes := s.caches.HealthCheck()
	components["cache"] = driving.ComponentHealth{
		Status:  cacheStatus,
		Details: strings.Join(notes, "; "),
	}

	// The vector index fails closed, so the only signal is whether it
	// answers at all.
	count := s.vectorIndex.Count(ctx, "")
	components["vector_index"] = driving.ComponentHealth{
		Status:  cache.StatusHealthy,
		Details: fmt.Sprintf("%d chunks indexed", count),
	}

	unhealthy := 0
	for _, c := range components {
		if c.Status != cache.StatusHealthy {
			unhealthy++
		}
	}
	status := cache.StatusHealthy
	switch {
	case unhealthy == 1:
		status = cache.StatusDegraded
	case unhealthy > 1:
		status = cache.StatusUnhealthy
	}
	return driving.HealthReport{Status: status, Components: components}
}

// Stats reports cache counters for status output.
func (s *RAGService) Stats() map[cache.Role]cache.RoleSnapshot {
	return s.caches.Snapshot()
}

func probe(ping func() error) driving.ComponentHealth {
	if err := ping(); err != nil {
		return driving.ComponentHealth{Status: cache.StatusUnhealthy, Details: err.Error()}
	}
	return driving.ComponentHealth{Status: cache.StatusHealthy, Details: "ok"}
}

// finish stamps request metadata onto a fallback answer.
func (s *RAGService) finish(fb *domain.StructuredAnswer, req domain.AskRequest, started time.Time, promptTokens int) *domain.StructuredAnswer {
	fb.Metadata.CollectionID = req.CollectionID
	fb.Metadata.SessionID = req.SessionID
	fb.Metadata.PromptTokens = promptTokens
	fb.Metadata.ProcessingTime = time.Since(started)
	return fb
}

// preprocessQuestion normalises the raw question and rejects unusable
// input. Overlong questions are capped rather than rejected.
func preprocessQuestion(q string) (string, bool) {
	fields := strings.FieldsFunc(q, unicode.IsSpace)
	q = strings.Join(fields, " ")
	runes := []rune(q)
	if len(runes) < minQuestionRunes {
		return "", false
	}
	if len(runes) > maxQuestionRunes {
		q = string(runes[:maxQuestionRunes]) + "..."
	}
	return q, true
}

// resolveCollection prefers the request's collection and falls back to
// the document's own.
func (s *RAGService) resolveCollection(ctx context.Context, req domain.AskRequest) string {
	if req.CollectionID != "" {
		return req.CollectionID
	}
	if s.docStore == nil || req.DocumentID == "" {
		return ""
	}
	doc, err := s.docStore.GetDocument(ctx, req.DocumentID)
	if err != nil {
		logger.Debug("Document lookup failed for %s: %v", req.DocumentID, err)
		return ""
	}
	return doc.CollectionID
}

// embedQuestion returns the question embedding, consulting the
// embedding cache before the external service.
func (s *RAGService) embedQuestion(ctx context.Context, question string) ([]float32, error) {
	model := s.embeddingService.ModelName()
	if vec, ok := s.caches.GetEmbedding(question, model); ok {
		logger.Debug("Embedding cache hit")
		return vec, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.config().EmbedTimeout)
	defer cancel()

	vec, err := s.embeddingService.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w: %w", classifyUpstream(err), err)
	}
	s.caches.SetEmbedding(question, model, vec)
	return vec, nil
}

// relevantHistory loads and filters conversation context. Any failure
// degrades to answering without history.
func (s *RAGService) relevantHistory(ctx context.Context, req domain.AskRequest, question string) []domain.Turn {
	maxTurns := s.config().MaxHistoryTurns
	turns := req.History
	if turns == nil && req.SessionID != "" && s.convStore != nil {
		loaded, err := s.convStore.RecentTurns(ctx, req.SessionID, maxTurns*2)
		if err != nil {
			logger.Warn("History load failed for session %s: %v", req.SessionID, err)
			return nil
		}
		turns = loaded
	}
	return s.history.Filter(turns, question, maxTurns)
}

func (s *RAGService) generate(ctx context.Context, compressed string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config().GenerateTimeout)
	defer cancel()

	raw, err := s.llmService.Generate(ctx, compressed, driven.GenerateOptions{
		MaxTokens:   generateMaxTokens,
		Temperature: generateTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("generate answer: %w: %w", classifyUpstream(err), err)
	}
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("generate answer: %w: empty output", domain.ErrUpstreamFailure)
	}
	return raw, nil
}

// classifyUpstream tags an external-call error as a timeout or a plain
// upstream failure so callers can branch with errors.Is.
func classifyUpstream(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrUpstreamTimeout
	}
	return domain.ErrUpstreamFailure
}

// recordTurns persists the exchange for future context. Best-effort.
func (s *RAGService) recordTurns(ctx context.Context, sessionID, question string, a *domain.StructuredAnswer) {
	if s.convStore == nil || sessionID == "" || a.IsFallback {
		return
	}
	now := time.Now()
	if err := s.convStore.AppendTurn(ctx, sessionID, domain.Turn{
		Role: domain.RoleUser, Content: question, Timestamp: now,
	}); err != nil {
		logger.Warn("Failed to record user turn: %v", err)
		return
	}
	if err := s.convStore.AppendTurn(ctx, sessionID, domain.Turn{
		Role: domain.RoleAssistant, Content: a.MainText, Timestamp: now, Confidence: a.Confidence,
	}); err != nil {
		logger.Warn("Failed to record assistant turn: %v", err)
	}
}
