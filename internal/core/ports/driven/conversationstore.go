package driven

import (
	"context"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// ConversationStore persists conversation turns per session.
// This is an optional service - when nil, answers are produced without
// multi-turn context.
type ConversationStore interface {
	// RecentTurns returns up to limit turns for a session, oldest first.
	RecentTurns(ctx context.Context, sessionID string, limit int) ([]domain.Turn, error)

	// AppendTurn records a turn at the end of a session.
	AppendTurn(ctx context.Context, sessionID string, turn domain.Turn) error

	// DeleteSession removes a session and its turns.
	DeleteSession(ctx context.Context, sessionID string) error

	// Sessions lists known session IDs.
	Sessions(ctx context.Context) ([]string, error)

	// Close releases resources.
	Close() error
}
