package driving

import (
	"context"
	"time"
)

// IndexingService ingests document text into the vector index in the
// background. Task status is held in memory only; it is lost on restart,
// which is acceptable because indexing is idempotent and re-triggerable.
type IndexingService interface {
	// Enqueue schedules ingestion of a document's extracted text.
	// Returns the task ID, or domain.ErrIndexingInProgress when an
	// indexing run for the same document is already queued or running.
	Enqueue(ctx context.Context, req IndexRequest) (string, error)

	// TaskStatus returns the status for a task ID.
	TaskStatus(taskID string) (*TaskStatus, bool)

	// DocumentStatus returns the most recent task status for a document.
	DocumentStatus(documentID string) (*TaskStatus, bool)

	// Close stops the workers after draining queued tasks.
	Close() error
}

// IndexRequest describes one ingestion task.
type IndexRequest struct {
	// DocumentID is the document being (re)indexed.
	DocumentID string

	// CollectionID is the owning collection partition.
	CollectionID string

	// Title is the document title stored with its metadata.
	Title string

	// Text is the full extracted document text.
	Text string
}

// Task states.
const (
	// TaskQueued means the task is waiting for a worker.
	TaskQueued = "queued"

	// TaskRunning means a worker is processing the task.
	TaskRunning = "running"

	// TaskCompleted means the task finished successfully.
	TaskCompleted = "completed"

	// TaskFailed means the task finished with an error.
	TaskFailed = "failed"
)

// TaskStatus is the in-memory progress record for one ingestion task.
type TaskStatus struct {
	// TaskID is the unique task identifier.
	TaskID string

	// DocumentID is the document being indexed.
	DocumentID string

	// State is one of TaskQueued, TaskRunning, TaskCompleted, TaskFailed.
	State string

	// ChunksIndexed is the number of chunks stored so far.
	ChunksIndexed int

	// ChunksFailed is the number of chunks whose embedding failed.
	ChunksFailed int

	// Message is a human-readable progress or failure note.
	Message string

	// EnqueuedAt is when the task entered the queue.
	EnqueuedAt time.Time

	// FinishedAt is when the task completed or failed, zero until then.
	FinishedAt time.Time
}
