package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstreamTimeout indicates an external embedding or LLM call
	// exceeded its deadline.
	ErrUpstreamTimeout = errors.New("upstream service timeout")

	// ErrUpstreamFailure indicates an external embedding or LLM call
	// errored or returned an empty result.
	ErrUpstreamFailure = errors.New("upstream service failure")

	// ErrIndexingInProgress indicates an indexing run for the same document
	// is already active.
	ErrIndexingInProgress = errors.New("indexing in progress")
)
