package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

func TestDocumentStore_SaveAndGet(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	doc := &domain.Document{
		ID:             "doc-1",
		CollectionID:   "col-1",
		Title:          "临床试验研究",
		EmbeddingModel: "nomic-embed-text",
		ChunkCount:     12,
	}
	require.NoError(t, store.SaveDocument(ctx, doc))

	got, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "临床试验研究", got.Title)
	assert.Equal(t, 12, got.ChunkCount)
}

func TestDocumentStore_GetNotFound(t *testing.T) {
	store := NewDocumentStore()

	_, err := store.GetDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_SaveValidation(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	assert.ErrorIs(t, store.SaveDocument(ctx, nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.SaveDocument(ctx, &domain.Document{}), domain.ErrInvalidInput)
}

func TestDocumentStore_SaveUpdates(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "doc-1", ChunkCount: 3}))
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "doc-1", ChunkCount: 7}))

	got, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 7, got.ChunkCount)
}

func TestDocumentStore_Delete(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "doc-1"}))
	require.NoError(t, store.DeleteDocument(ctx, "doc-1"))

	_, err := store.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting a missing document is not an error.
	assert.NoError(t, store.DeleteDocument(ctx, "doc-1"))
}

func TestDocumentStore_ListByCollection(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "doc-b", CollectionID: "col-1"}))
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "doc-a", CollectionID: "col-1"}))
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "doc-c", CollectionID: "col-2"}))

	docs, err := store.ListDocuments(ctx, "col-1")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "doc-a", docs[0].ID)
	assert.Equal(t, "doc-b", docs[1].ID)

	empty, err := store.ListDocuments(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
