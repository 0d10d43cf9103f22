package domain

import "time"

// Document holds metadata for a processed upload.
// Text extraction happens upstream; the core only consumes the result.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// CollectionID is the owning group's partition, or a private-user
	// partition for ungrouped uploads.
	CollectionID string

	// Title is the human-readable title.
	Title string

	// EmbeddingModel is the model that produced this document's chunk
	// embeddings. All chunks of a document share one model version.
	EmbeddingModel string

	// ChunkCount is the number of chunks stored for the document.
	ChunkCount int

	// CreatedAt is when the document was first indexed.
	CreatedAt time.Time

	// UpdatedAt is when the document was last reindexed.
	UpdatedAt time.Time
}

// Chunk represents a contiguous slice of a source document.
// Chunks are created during ingestion and consumed read-only by retrieval.
type Chunk struct {
	// DocumentID links to the parent document.
	DocumentID string

	// CollectionID is the owning collection partition.
	CollectionID string

	// ChunkIndex is the ordinal position within the document.
	// It is unique per document and stable across rebuilds.
	ChunkIndex int

	// Text is the chunk content.
	Text string

	// Page is the source page number, when known.
	Page int

	// Section is the source section heading, when known.
	Section string
}

// RetrievalCandidate is a chunk scored against a question.
// Candidates are ephemeral: derived per query, never persisted.
type RetrievalCandidate struct {
	// Chunk is the underlying document slice.
	Chunk Chunk

	// Similarity is the cosine similarity to the query embedding.
	// Nominally in [-1, 1]; effectively [0, 1] for normalised embeddings.
	Similarity float64

	// TextQuality is a heuristic quality score in [0, 1], computed
	// during reranking.
	TextQuality float64

	// Score is the composite rerank score used for final ordering.
	Score float64
}
