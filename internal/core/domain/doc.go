// Package domain defines the core business entities for Lectern.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: document metadata for a processed upload
//   - Chunk: an embedded slice of document text
//   - RetrievalCandidate: a chunk scored against a question
//   - StructuredAnswer: the grounded, citation-bearing answer
//   - Turn: one conversation turn consumed for context
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
