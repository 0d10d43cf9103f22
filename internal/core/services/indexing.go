package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/lectern/internal/cache"
	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
	"github.com/custodia-labs/lectern/internal/core/ports/driving"
	"github.com/custodia-labs/lectern/internal/logger"
	"github.com/custodia-labs/lectern/internal/postprocessors/chunker"
)

// Ensure IndexingService implements the interface.
var _ driving.IndexingService = (*IndexingService)(nil)

// indexTask is one unit of ingestion work.
type indexTask struct {
	taskID       string
	documentID   string
	collectionID string
	title        string
	text         string
}

// IndexingService ingests documents in the background: chunk, embed,
// store, invalidate. Task status is held in memory only; indexing is
// idempotent and can be re-triggered after a restart.
type IndexingService struct {
	cfg              domain.Config
	chunker          *chunker.Processor
	embeddingService driven.EmbeddingService
	vectorIndex      driven.VectorIndex
	docStore         driven.DocumentStore
	caches           *cache.Manager

	queue chan indexTask
	wg    sync.WaitGroup

	mu       sync.Mutex
	closed   bool
	inFlight map[string]string              // documentID -> taskID
	statuses map[string]*driving.TaskStatus // taskID -> status
	byDoc    map[string]string              // documentID -> latest taskID
}

// NewIndexingService creates the service and starts its worker pool.
func NewIndexingService(
	cfg domain.Config,
	embeddingService driven.EmbeddingService,
	vectorIndex driven.VectorIndex,
	docStore driven.DocumentStore,
	caches *cache.Manager,
) *IndexingService {
	workers := cfg.IndexWorkers
	if workers <= 0 {
		workers = 1
	}
	queueSize := cfg.IndexQueueSize
	if queueSize <= 0 {
		queueSize = workers * 4
	}

	s := &IndexingService{
		cfg:              cfg,
		chunker:          chunker.New(chunker.WithChunkSize(cfg.ChunkSize), chunker.WithOverlap(cfg.ChunkOverlap)),
		embeddingService: embeddingService,
		vectorIndex:      vectorIndex,
		docStore:         docStore,
		caches:           caches,
		queue:            make(chan indexTask, queueSize),
		inFlight:         make(map[string]string),
		statuses:         make(map[string]*driving.TaskStatus),
		byDoc:            make(map[string]string),
	}

	s.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go s.worker(i)
	}
	logger.Debug("indexing: started %d workers, queue size %d", workers, queueSize)
	return s
}

// Enqueue submits a document for background indexing and returns the
// task ID. A document already being indexed is rejected with
// ErrIndexingInProgress.
func (s *IndexingService) Enqueue(ctx context.Context, req driving.IndexRequest) (string, error) {
	if req.DocumentID == "" {
		return "", fmt.Errorf("enqueue: %w: missing document ID", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(req.Text) == "" {
		return "", fmt.Errorf("enqueue: %w: empty document text", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", fmt.Errorf("enqueue: indexing service closed")
	}
	if taskID, busy := s.inFlight[req.DocumentID]; busy {
		return "", fmt.Errorf("enqueue document %s (task %s): %w", req.DocumentID, taskID, domain.ErrIndexingInProgress)
	}

	task := indexTask{
		taskID:       uuid.New().String(),
		documentID:   req.DocumentID,
		collectionID: req.CollectionID,
		title:        req.Title,
		text:         req.Text,
	}

	select {
	case s.queue <- task:
	default:
		return "", fmt.Errorf("enqueue document %s: index queue full", req.DocumentID)
	}

	s.inFlight[req.DocumentID] = task.taskID
	s.byDoc[req.DocumentID] = task.taskID
	s.statuses[task.taskID] = &driving.TaskStatus{
		TaskID:     task.taskID,
		DocumentID: req.DocumentID,
		State:      driving.TaskQueued,
		EnqueuedAt: time.Now(),
	}
	logger.Info("indexing: enqueued document %s as task %s", req.DocumentID, task.taskID)
	return task.taskID, nil
}

// TaskStatus returns a copy of the status for a task ID.
func (s *IndexingService) TaskStatus(taskID string) (*driving.TaskStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.statuses[taskID]
	if !ok {
		return nil, false
	}
	copied := *status
	return &copied, true
}

// DocumentStatus returns the latest task status for a document.
func (s *IndexingService) DocumentStatus(documentID string) (*driving.TaskStatus, bool) {
	s.mu.Lock()
	taskID, ok := s.byDoc[documentID]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	return s.TaskStatus(taskID)
}

// Close stops accepting work and waits for in-flight tasks to finish.
func (s *IndexingService) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.queue)
	s.wg.Wait()
	return nil
}

func (s *IndexingService) worker(id int) {
	defer s.wg.Done()
	for task := range s.queue {
		logger.Debug("indexing: worker %d picked up task %s", id, task.taskID)
		s.runTask(task)
	}
}

func (s *IndexingService) runTask(task indexTask) {
	ctx := context.Background()
	s.setState(task, driving.TaskRunning, 0, 0, "")

	defer func() {
		s.mu.Lock()
		delete(s.inFlight, task.documentID)
		s.mu.Unlock()
	}()

	chunks := s.chunker.Process(task.text, task.documentID, task.collectionID)
	if len(chunks) == 0 {
		s.setState(task, driving.TaskFailed, 0, 0, "document produced no chunks")
		return
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embedCtx, cancel := context.WithTimeout(ctx, s.cfg.EmbedTimeout*time.Duration(len(texts)))
	embeddings, failed, err := s.embeddingService.EmbedBatch(embedCtx, texts)
	cancel()
	if err != nil {
		s.setState(task, driving.TaskFailed, 0, len(chunks), fmt.Sprintf("embed batch: %v", err))
		return
	}
	if len(failed) > 0 {
		logger.Warn("indexing: %d/%d chunks failed to embed for document %s", len(failed), len(chunks), task.documentID)
		chunks = dropFailedChunks(chunks, failed)
	}
	if len(chunks) == 0 || len(embeddings) != len(chunks) {
		s.setState(task, driving.TaskFailed, 0, len(texts), "no chunks could be embedded")
		return
	}

	if !s.vectorIndex.Store(ctx, chunks, embeddings, task.documentID, task.collectionID) {
		s.setState(task, driving.TaskFailed, 0, len(texts), "vector index rejected the document")
		return
	}

	if s.docStore != nil {
		now := time.Now()
		doc := &domain.Document{
			ID:             task.documentID,
			CollectionID:   task.collectionID,
			Title:          task.title,
			EmbeddingModel: s.embeddingService.ModelName(),
			ChunkCount:     len(chunks),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.docStore.SaveDocument(ctx, doc); err != nil {
			logger.Warn("indexing: failed to save document metadata for %s: %v", task.documentID, err)
		}
	}

	// Stale cached chunks and answers refer to the previous build.
	s.caches.InvalidateDocument(task.documentID)
	s.caches.SetChunks(task.documentID, chunks)

	s.setState(task, driving.TaskCompleted, len(chunks), len(texts)-len(chunks), "")
	logger.Info("indexing: document %s indexed, %d chunks", task.documentID, len(chunks))
}

func (s *IndexingService) setState(task indexTask, state string, indexed, failedCount int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.statuses[task.taskID]
	if !ok {
		return
	}
	status.State = state
	status.ChunksIndexed = indexed
	status.ChunksFailed = failedCount
	status.Message = message
	if state == driving.TaskCompleted || state == driving.TaskFailed {
		status.FinishedAt = time.Now()
	}
}

// dropFailedChunks removes chunks whose text the embedding service
// reported as failed, preserving order.
func dropFailedChunks(chunks []domain.Chunk, failed []string) []domain.Chunk {
	failedSet := make(map[string]bool, len(failed))
	for _, t := range failed {
		failedSet[t] = true
	}
	kept := chunks[:0]
	for _, c := range chunks {
		if !failedSet[c.Text] {
			kept = append(kept, c)
		}
	}
	return kept
}
