package domain

import "time"

// FallbackKind categorises why a fallback answer was substituted.
type FallbackKind string

// Fallback categories. Each maps to a fixed low-confidence message.
const (
	// FallbackNone marks a regular, non-fallback answer.
	FallbackNone FallbackKind = ""

	// FallbackNoGrounding is returned when retrieval found nothing relevant.
	FallbackNoGrounding FallbackKind = "no_relevant_content"

	// FallbackUpstreamError is returned when the embedding or LLM service
	// failed or timed out.
	FallbackUpstreamError FallbackKind = "upstream_error"

	// FallbackProcessingError is returned when answer processing itself failed.
	FallbackProcessingError FallbackKind = "processing_error"

	// FallbackValidationFailed is returned when the generated answer did not
	// meet minimum quality requirements.
	FallbackValidationFailed FallbackKind = "validation_failed"

	// FallbackInvalidQuestion is returned when the question itself was unusable.
	FallbackInvalidQuestion FallbackKind = "invalid_question"
)

// Source is one citation attached to a structured answer.
type Source struct {
	// SourceIndex is the 1-based index of the cited context block as it
	// appeared in the prompt.
	SourceIndex int

	// ChunkIndex is the cited chunk's ordinal position in its document.
	ChunkIndex int

	// Text is the cited chunk text, truncated for display.
	Text string

	// Similarity is the cited chunk's retrieval similarity.
	Similarity float64

	// Page is the source page number, when known.
	Page int

	// Section is the source section heading, when known.
	Section string
}

// AnswerMetadata carries per-request instrumentation.
// It is the only part of a cached answer refreshed on replay.
type AnswerMetadata struct {
	// DocumentID is the document the question was asked against.
	DocumentID string

	// CollectionID is the document's owning collection.
	CollectionID string

	// SessionID is the conversation session, when one exists.
	SessionID string

	// Question is the preprocessed question text.
	Question string

	// ProcessingTime is the wall-clock duration of the request.
	ProcessingTime time.Duration

	// PromptTokens is the estimated token count of the final prompt.
	PromptTokens int

	// ChunksRetrieved is the number of chunks that survived reranking.
	ChunksRetrieved int

	// CacheHit reports whether the answer was served from the answer cache.
	CacheHit bool

	// ContextFingerprint identifies the grounding context used.
	ContextFingerprint string

	// ErrorType tags the failure category for fallback answers.
	ErrorType FallbackKind

	// Timestamp is when the answer was produced.
	Timestamp time.Time
}

// StructuredAnswer is the parsed, validated result of one question.
// It is immutable after creation; cached copies are replayed verbatim
// except for refreshed metadata.
type StructuredAnswer struct {
	// MainText is the primary answer body.
	MainText string

	// KeyFindings lists short findings extracted from the answer, in order.
	KeyFindings []string

	// Limitations describes caveats the model stated, possibly empty.
	Limitations string

	// Sources lists the citations backing the answer, in order.
	Sources []Source

	// Confidence is the blended confidence score, clamped to [0.1, 1.0].
	Confidence float64

	// IsFallback reports whether this is a substituted fallback answer.
	IsFallback bool

	// Metadata carries instrumentation for this request.
	Metadata AnswerMetadata
}

// AskRequest describes one question against one document.
type AskRequest struct {
	// Question is the raw user question.
	Question string

	// DocumentID is the target document.
	DocumentID string

	// CollectionID is the document's owning collection partition.
	CollectionID string

	// SessionID selects conversation history, when non-empty.
	SessionID string

	// History is the recent conversation window supplied by the caller.
	// When nil and SessionID is set, the orchestrator loads it from the
	// conversation store.
	History []Turn

	// TopK overrides the configured retrieval count when positive.
	TopK int
}
