package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

func TestConversationStore_AppendAndRecent(t *testing.T) {
	store := NewConversationStore()
	ctx := context.Background()

	turns := []domain.Turn{
		{Role: domain.RoleUser, Content: "这个研究的方法是什么？"},
		{Role: domain.RoleAssistant, Content: "研究采用了随机对照试验。", Confidence: 0.8},
		{Role: domain.RoleUser, Content: "样本量有多大？"},
	}
	for _, turn := range turns {
		require.NoError(t, store.AppendTurn(ctx, "session-1", turn))
	}

	got, err := store.RecentTurns(ctx, "session-1", 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "这个研究的方法是什么？", got[0].Content)
	assert.Equal(t, "样本量有多大？", got[2].Content)
}

func TestConversationStore_RecentTurnsLimit(t *testing.T) {
	store := NewConversationStore()
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		require.NoError(t, store.AppendTurn(ctx, "session-1", domain.Turn{
			Role:    domain.RoleUser,
			Content: fmt.Sprintf("question %d", i),
		}))
	}

	got, err := store.RecentTurns(ctx, "session-1", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// The window keeps the newest turns, oldest first.
	assert.Equal(t, "question 4", got[0].Content)
	assert.Equal(t, "question 5", got[1].Content)
}

func TestConversationStore_EmptySession(t *testing.T) {
	store := NewConversationStore()

	got, err := store.RecentTurns(context.Background(), "unknown", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestConversationStore_AppendValidation(t *testing.T) {
	store := NewConversationStore()
	ctx := context.Background()

	assert.ErrorIs(t, store.AppendTurn(ctx, "", domain.Turn{Content: "x"}), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.AppendTurn(ctx, "session-1", domain.Turn{}), domain.ErrInvalidInput)
}

func TestConversationStore_DeleteSession(t *testing.T) {
	store := NewConversationStore()
	ctx := context.Background()

	require.NoError(t, store.AppendTurn(ctx, "session-1", domain.Turn{Role: domain.RoleUser, Content: "hello"}))
	require.NoError(t, store.DeleteSession(ctx, "session-1"))

	got, err := store.RecentTurns(ctx, "session-1", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestConversationStore_Sessions(t *testing.T) {
	store := NewConversationStore()
	ctx := context.Background()

	require.NoError(t, store.AppendTurn(ctx, "session-b", domain.Turn{Role: domain.RoleUser, Content: "b"}))
	require.NoError(t, store.AppendTurn(ctx, "session-a", domain.Turn{Role: domain.RoleUser, Content: "a"}))

	ids, err := store.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"session-a", "session-b"}, ids)
}
