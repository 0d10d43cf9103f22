package domain

import "time"

// Turn roles.
const (
	// RoleUser marks a question turn.
	RoleUser = "user"

	// RoleAssistant marks an answer turn.
	RoleAssistant = "assistant"
)

// Turn is one conversation turn. The core reads a bounded recent window
// of turns supplied by the conversation store; it never owns their
// persistence.
type Turn struct {
	// Role is RoleUser or RoleAssistant.
	Role string

	// Content is the turn text.
	Content string

	// Timestamp is when the turn was recorded.
	Timestamp time.Time

	// Confidence is the answer confidence for assistant turns, 0 otherwise.
	Confidence float64
}
