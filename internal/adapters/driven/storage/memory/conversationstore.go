package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

// Ensure ConversationStore implements the interface.
var _ driven.ConversationStore = (*ConversationStore)(nil)

// ConversationStore is an in-memory implementation of driven.ConversationStore.
// Turns are kept in append order per session.
type ConversationStore struct {
	mu       sync.RWMutex
	sessions map[string][]domain.Turn
}

// NewConversationStore creates a new in-memory conversation store.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		sessions: make(map[string][]domain.Turn),
	}
}

// RecentTurns returns up to limit turns for a session, oldest first.
func (s *ConversationStore) RecentTurns(_ context.Context, sessionID string, limit int) ([]domain.Turn, error) {
	if limit <= 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := s.sessions[sessionID]
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	out := make([]domain.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

// AppendTurn records a turn at the end of a session.
func (s *ConversationStore) AppendTurn(_ context.Context, sessionID string, turn domain.Turn) error {
	if sessionID == "" || turn.Content == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = append(s.sessions[sessionID], turn)
	return nil
}

// DeleteSession removes a session and its turns.
func (s *ConversationStore) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Sessions lists known session IDs, sorted.
func (s *ConversationStore) Sessions(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close releases resources.
func (s *ConversationStore) Close() error {
	return nil
}
