package driving

import (
	"context"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// AnswerService answers natural-language questions about a document.
type AnswerService interface {
	// Ask runs the full retrieval-augmented pipeline for one question.
	// It never returns an error: every failure degrades to a fallback
	// answer with a typed error tag in the metadata.
	Ask(ctx context.Context, req domain.AskRequest) *domain.StructuredAnswer

	// PresetQuestions suggests starter questions for a document.
	PresetQuestions(title string) []string

	// Health probes each pipeline component and reports per-component status.
	Health(ctx context.Context) HealthReport
}

// ComponentHealth is the probe result for one pipeline component.
type ComponentHealth struct {
	// Status is "healthy", "degraded" or "unhealthy".
	Status string

	// Details is a human-readable explanation.
	Details string
}

// HealthReport aggregates component probe results.
type HealthReport struct {
	// Status is the overall status: healthy when all components are,
	// degraded when exactly one is not, unhealthy otherwise.
	Status string

	// Components maps component name to its probe result.
	Components map[string]ComponentHealth
}
