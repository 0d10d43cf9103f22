package driven

import (
	"context"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// DocumentStore supplies document metadata.
// The core reads it to scope retrieval; ingestion updates chunk counts.
type DocumentStore interface {
	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// SaveDocument stores or updates a document's metadata.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// DeleteDocument removes a document's metadata.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns documents for a collection.
	ListDocuments(ctx context.Context, collectionID string) ([]domain.Document, error)
}
