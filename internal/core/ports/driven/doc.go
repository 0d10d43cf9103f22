// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the pipeline to function:
//
//   - EmbeddingService: turns text into vectors (external, network-bound)
//   - LLMService: generates answers from prompts (external, network-bound)
//   - VectorIndex: stores chunk embeddings and serves similarity search
//   - DocumentStore: supplies document metadata for retrieval scoping
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ConversationStore: conversation persistence. Without it, answers are
//     produced without multi-turn context.
//   - ConfigStore: file-backed configuration. Without it, defaults apply.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
