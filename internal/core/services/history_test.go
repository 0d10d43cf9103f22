package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

func conversation() []domain.Turn {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return []domain.Turn{
		{Role: domain.RoleUser, Content: "What sampling strategy did the experiment use?", Timestamp: base},
		{Role: domain.RoleAssistant, Content: "It used stratified sampling.", Timestamp: base.Add(time.Minute)},
		{Role: domain.RoleUser, Content: "Tell me about the weather in Paris", Timestamp: base.Add(2 * time.Minute)},
		{Role: domain.RoleAssistant, Content: "That is outside the document.", Timestamp: base.Add(3 * time.Minute)},
		{Role: domain.RoleUser, Content: "How large was the experiment sample?", Timestamp: base.Add(4 * time.Minute)},
		{Role: domain.RoleAssistant, Content: "Two hundred participants.", Timestamp: base.Add(5 * time.Minute)},
	}
}

func TestFilterSelectsRelevantTurns(t *testing.T) {
	f := NewHistoryFilter()

	got := f.Filter(conversation(), "What was the experiment sampling method?", 2)

	require.Len(t, got, 4)
	// Both sampling-related user turns and their answers, no weather.
	assert.Equal(t, "What sampling strategy did the experiment use?", got[0].Content)
	assert.Equal(t, "It used stratified sampling.", got[1].Content)
	assert.Equal(t, "How large was the experiment sample?", got[2].Content)
	assert.Equal(t, "Two hundred participants.", got[3].Content)
}

func TestFilterOutputIsChronological(t *testing.T) {
	f := NewHistoryFilter()

	got := f.Filter(conversation(), "experiment sampling", 3)

	require.NotEmpty(t, got)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].Timestamp.Before(got[i-1].Timestamp),
			"turn %d out of order", i)
	}
}

func TestFilterRespectsMaxTurns(t *testing.T) {
	f := NewHistoryFilter()

	got := f.Filter(conversation(), "experiment sampling strategy", 1)

	// One user turn plus its assistant reply at most.
	require.Len(t, got, 2)
	assert.Equal(t, domain.RoleUser, got[0].Role)
	assert.Equal(t, domain.RoleAssistant, got[1].Role)
}

func TestFilterNoOverlapReturnsEmpty(t *testing.T) {
	f := NewHistoryFilter()

	got := f.Filter(conversation(), "чему равно ускорение свободного падения", 3)

	assert.Empty(t, got)
}

func TestFilterEmptyInputs(t *testing.T) {
	f := NewHistoryFilter()

	assert.Empty(t, f.Filter(nil, "question about methods", 3))
	assert.Empty(t, f.Filter(conversation(), "", 3))
	assert.Empty(t, f.Filter(conversation(), "experiment", 0))
}

func TestFilterChineseKeywords(t *testing.T) {
	f := NewHistoryFilter()

	history := []domain.Turn{
		{Role: domain.RoleUser, Content: "这篇文献的研究方法是什么"},
		{Role: domain.RoleAssistant, Content: "采用了问卷调查。"},
		{Role: domain.RoleUser, Content: "今天天气怎么样"},
		{Role: domain.RoleAssistant, Content: "这与文献无关。"},
	}

	got := f.Filter(history, "请详细说明研究方法", 2)

	require.Len(t, got, 2)
	assert.Equal(t, "这篇文献的研究方法是什么", got[0].Content)
}

func TestExtractKeywordsFiltersStopwords(t *testing.T) {
	got := extractKeywords("What is the experiment sampling strategy for the study")

	assert.NotContains(t, got, "what")
	assert.NotContains(t, got, "the")
	assert.NotContains(t, got, "is")
	assert.Contains(t, got, "experiment")
	assert.Contains(t, got, "sampling")
	assert.LessOrEqual(t, len(got), maxTurnKeywords)
}
