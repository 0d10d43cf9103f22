package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// Key derivation must stay stable across releases: a format change
// silently invalidates every warm cache. md5 is used purely as a fast
// non-cryptographic digest here.

// EmbeddingKey derives the cache key for an embedding of text under the
// given model: "emb:<model>:<md5(text)[:12]>".
func EmbeddingKey(text, model string) string {
	return fmt.Sprintf("emb:%s:%s", model, md5Hex(text)[:12])
}

// AnswerKey derives the cache key for an answer to question against
// documentID with the given context fingerprint:
// "ans:<doc>:<md5(question)[:8]>:<fingerprint[:8]>".
func AnswerKey(documentID, question, fingerprint string) string {
	fp := fingerprint
	if len(fp) > 8 {
		fp = fp[:8]
	}
	return fmt.Sprintf("ans:%s:%s:%s", documentID, md5Hex(question)[:8], fp)
}

// ChunkKey derives the cache key for one chunk of a document:
// "chunk:<doc>:<index>".
func ChunkKey(documentID string, index int) string {
	return fmt.Sprintf("chunk:%s:%d", documentID, index)
}

// fingerprintEntry is the canonical shape hashed per candidate. Field
// order is fixed by the struct so the JSON encoding is deterministic.
type fingerprintEntry struct {
	Page   int    `json:"page"`
	Source string `json:"source"`
	Text   string `json:"text"`
}

// ContextFingerprint digests the retrieved context so answers cached
// under one context are never replayed against another. Only the first
// 100 characters of each candidate participate; that is enough to tell
// contexts apart without hashing whole chunks.
func ContextFingerprint(candidates []domain.RetrievalCandidate) string {
	entries := make([]fingerprintEntry, 0, len(candidates))
	for _, c := range candidates {
		text := c.Chunk.Text
		if runes := []rune(text); len(runes) > 100 {
			text = string(runes[:100])
		}
		entries = append(entries, fingerprintEntry{
			Page:   c.Chunk.Page,
			Source: c.Chunk.DocumentID,
			Text:   text,
		})
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		// Cannot happen for these field types; fall back to an
		// empty-context fingerprint rather than fail the lookup.
		raw = []byte("[]")
	}
	return md5Hex(string(raw))[:16]
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
