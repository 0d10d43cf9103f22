// Package cache provides the in-process caching layer for the answering
// pipeline: a TTL+capacity bounded store, deterministic key derivation,
// shared hit/miss statistics, and a manager owning the three cache roles
// (embedding, answer, chunk).
//
// All cache operations are best-effort. Internal failures degrade to
// cache-miss behaviour and are logged; they never propagate to callers.
package cache
