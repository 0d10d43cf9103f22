package answer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

func newTestProcessor() *Processor {
	return NewProcessor(domain.DefaultConfig())
}

func rankedCandidates() []domain.RetrievalCandidate {
	return []domain.RetrievalCandidate{
		{Chunk: domain.Chunk{DocumentID: "doc-1", ChunkIndex: 7, Text: "The study used a randomized controlled trial.", Page: 3}, Similarity: 0.82},
		{Chunk: domain.Chunk{DocumentID: "doc-1", ChunkIndex: 12, Text: "Data was collected across two sites.", Page: 5}, Similarity: 0.55},
		{Chunk: domain.Chunk{DocumentID: "doc-1", ChunkIndex: 2, Text: "Earlier surveys informed the design.", Page: 1}, Similarity: 0.31},
	}
}

func TestProcessEndToEnd(t *testing.T) {
	p := newTestProcessor()
	raw := "该研究采用了随机对照试验【来源1】。\n\n关键发现：1. X 2. Y"

	got := p.Process(raw, rankedCandidates(), "What methods were used?", "doc-1")

	require.False(t, got.IsFallback)
	assert.Equal(t, "该研究采用了随机对照试验【来源1】。", got.MainText)
	assert.Equal(t, []string{"X", "Y"}, got.KeyFindings)
	require.Len(t, got.Sources, 1)
	assert.Equal(t, 1, got.Sources[0].SourceIndex)
	assert.Equal(t, 7, got.Sources[0].ChunkIndex)
	assert.InDelta(t, 0.742, got.Confidence, 1e-9)
	assert.Equal(t, 3, got.Metadata.ChunksRetrieved)
}

func TestProcessMarkersFoundFromEnd(t *testing.T) {
	p := newTestProcessor()
	raw := "正文提到了关键发现这个词，但答案还在继续展开说明研究内容。\n\n关键发现：1. 样本量充足 2. 方法可靠\n\n局限性：样本来自单一地区。"

	got := p.Process(raw, rankedCandidates(), "q", "doc-1")

	require.False(t, got.IsFallback)
	assert.Contains(t, got.MainText, "关键发现这个词")
	assert.Equal(t, []string{"样本量充足", "方法可靠"}, got.KeyFindings)
	assert.Equal(t, "样本来自单一地区。", got.Limitations)
}

func TestProcessConfidenceSectionNotInFindings(t *testing.T) {
	p := newTestProcessor()
	raw := "该研究基于大规模随机对照试验得出结论，方法学质量较高。\n\n关键发现：1. 试验设计严谨 2. 样本充足\n\n置信度：高"

	got := p.Process(raw, rankedCandidates(), "q", "doc-1")

	require.False(t, got.IsFallback)
	assert.Equal(t, []string{"试验设计严谨", "样本充足"}, got.KeyFindings)
	assert.NotContains(t, got.MainText, "置信度")
}

func TestProcessConfidenceSectionNotInLimitations(t *testing.T) {
	p := newTestProcessor()
	raw := "该研究的方法部分描述充分，结论与数据一致，可信程度较好。\n\n关键发现：1. 方法透明\n\n局限性：样本来自单一机构。\n\n置信度：中"

	got := p.Process(raw, rankedCandidates(), "q", "doc-1")

	require.False(t, got.IsFallback)
	assert.Equal(t, []string{"方法透明"}, got.KeyFindings)
	assert.Equal(t, "样本来自单一机构。", got.Limitations)
}

func TestProcessFindingsSentenceFallback(t *testing.T) {
	p := newTestProcessor()
	raw := "研究结论较为可靠，涵盖了多个维度的分析。\n\n关键发现：样本具有代表性。分析方法严谨。结果可复现。数据公开透明。覆盖面广泛。还有一条多余的。"

	got := p.Process(raw, rankedCandidates(), "q", "doc-1")

	require.False(t, got.IsFallback)
	require.Len(t, got.KeyFindings, 5)
	assert.Equal(t, "样本具有代表性", got.KeyFindings[0])
}

func TestProcessCitationRoundTrip(t *testing.T) {
	p := newTestProcessor()
	raw := "The methodology is described in detail in source 2 of the provided material."

	got := p.Process(raw, rankedCandidates(), "q", "doc-1")

	require.Len(t, got.Sources, 1)
	assert.Equal(t, 2, got.Sources[0].SourceIndex)
	// source 2 is 1-based, so it maps to candidate index 1.
	assert.Equal(t, 12, got.Sources[0].ChunkIndex)
	assert.InDelta(t, 0.55, got.Sources[0].Similarity, 1e-9)
}

func TestProcessCitationOutOfRangeIgnored(t *testing.T) {
	p := newTestProcessor()
	raw := "详见【来源9】中的内容，该部分给出了完整的说明与分析。"

	got := p.Process(raw, rankedCandidates(), "q", "doc-1")

	// The dangling citation is dropped and the top candidates are
	// cited instead.
	require.Len(t, got.Sources, 3)
	assert.Equal(t, 1, got.Sources[0].SourceIndex)
}

func TestProcessNoCitationsFallsBackToTopThree(t *testing.T) {
	p := newTestProcessor()
	raw := "研究采用了混合方法设计，同时收集了定量与定性数据进行三角验证。"

	got := p.Process(raw, rankedCandidates(), "q", "doc-1")

	require.Len(t, got.Sources, 3)
	assert.Equal(t, 7, got.Sources[0].ChunkIndex)
	assert.Equal(t, 12, got.Sources[1].ChunkIndex)
	assert.Equal(t, 2, got.Sources[2].ChunkIndex)
}

func TestProcessDuplicateCitationsCollapse(t *testing.T) {
	p := newTestProcessor()
	raw := "方法部分见【来源1】，其样本描述同样来自【来源1】，补充数据见【来源2】。"

	got := p.Process(raw, rankedCandidates(), "q", "doc-1")

	require.Len(t, got.Sources, 2)
	assert.Equal(t, 1, got.Sources[0].SourceIndex)
	assert.Equal(t, 2, got.Sources[1].SourceIndex)
}

func TestProcessTooShortFallsBack(t *testing.T) {
	p := newTestProcessor()

	got := p.Process("太短了", rankedCandidates(), "q", "doc-1")

	assert.True(t, got.IsFallback)
	assert.Equal(t, domain.FallbackValidationFailed, got.Metadata.ErrorType)
	assert.InDelta(t, 0.1, got.Confidence, 1e-9)
}

func TestProcessRefusalPrefixFallsBack(t *testing.T) {
	p := newTestProcessor()
	tests := []string{
		"抱歉，文献中没有足够的信息来回答这个问题，建议您换个角度提问。",
		"Sorry, the provided context does not contain enough information to answer.",
		"I cannot answer this question based on the provided literature content.",
	}

	for _, raw := range tests {
		got := p.Process(raw, rankedCandidates(), "q", "doc-1")
		assert.True(t, got.IsFallback, "raw: %s", raw)
	}
}

func TestProcessRefusalOnlyChecksPrefix(t *testing.T) {
	p := newTestProcessor()
	// The refusal phrase appears well past the first 50 characters.
	raw := "该研究采用了结构化的混合方法设计并进行了完整的数据验证流程分析，" +
		strings.Repeat("补充说明内容。", 5) + "对于个别细节作者表示无法完全确认。"

	got := p.Process(raw, rankedCandidates(), "q", "doc-1")

	assert.False(t, got.IsFallback)
}

func TestProcessEmptyInputFallsBack(t *testing.T) {
	p := newTestProcessor()

	got := p.Process("   ", rankedCandidates(), "q", "doc-1")

	assert.True(t, got.IsFallback)
	assert.Equal(t, domain.FallbackProcessingError, got.Metadata.ErrorType)
}

func TestProcessSourceTextCapped(t *testing.T) {
	p := newTestProcessor()
	candidates := []domain.RetrievalCandidate{
		{Chunk: domain.Chunk{DocumentID: "doc-1", ChunkIndex: 0, Text: strings.Repeat("长", 600)}, Similarity: 0.9},
	}

	got := p.Process("答案引用了【来源1】中的超长文本块进行说明。", candidates, "q", "doc-1")

	require.Len(t, got.Sources, 1)
	assert.Len(t, []rune(got.Sources[0].Text), maxSourceTextLen)
}
