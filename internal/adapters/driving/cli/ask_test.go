package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driving"
)

// mockAnswerService returns a canned answer and records the request.
type mockAnswerService struct {
	answer  *domain.StructuredAnswer
	health  driving.HealthReport
	lastReq domain.AskRequest
}

func (m *mockAnswerService) Ask(_ context.Context, req domain.AskRequest) *domain.StructuredAnswer {
	m.lastReq = req
	return m.answer
}

func (m *mockAnswerService) PresetQuestions(title string) []string {
	if title != "" {
		return []string{"《" + title + "》的主要研究内容是什么？", "这篇文献的研究方法是什么？"}
	}
	return []string{"这篇文献的研究方法是什么？"}
}

func (m *mockAnswerService) Health(_ context.Context) driving.HealthReport {
	return m.health
}

func executeCommand(t *testing.T, args ...string) string {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	return buf.String()
}

func TestAskCmd_PrintsStructuredAnswer(t *testing.T) {
	mock := &mockAnswerService{
		answer: &domain.StructuredAnswer{
			MainText:    "该研究采用了随机对照试验。",
			KeyFindings: []string{"试验设计严谨", "样本充足"},
			Limitations: "样本仅来自单一地区。",
			Sources: []domain.Source{
				{SourceIndex: 1, ChunkIndex: 7, Similarity: 0.82},
			},
			Confidence: 0.74,
		},
	}
	old := answerService
	answerService = mock
	defer func() { answerService = old }()

	out := executeCommand(t, "ask", "研究方法是什么？", "--document", "doc-1")

	assert.Contains(t, out, "该研究采用了随机对照试验。")
	assert.Contains(t, out, "1. 试验设计严谨")
	assert.Contains(t, out, "Limitations: 样本仅来自单一地区。")
	assert.Contains(t, out, "[1] chunk 7 (similarity 0.82)")
	assert.Contains(t, out, "Confidence: 0.74")

	assert.Equal(t, "研究方法是什么？", mock.lastReq.Question)
	assert.Equal(t, "doc-1", mock.lastReq.DocumentID)
}

func TestAskCmd_FallbackShowsErrorType(t *testing.T) {
	mock := &mockAnswerService{
		answer: &domain.StructuredAnswer{
			MainText:   "抱歉，处理您的问题时出现错误，请稍后重试。",
			Confidence: 0.1,
			IsFallback: true,
			Metadata:   domain.AnswerMetadata{ErrorType: domain.FallbackUpstreamError},
		},
	}
	old := answerService
	answerService = mock
	defer func() { answerService = old }()

	out := executeCommand(t, "ask", "研究方法是什么？", "--document", "doc-1")

	assert.Contains(t, out, "fallback")
	assert.Contains(t, out, string(domain.FallbackUpstreamError))
}

func TestAskCmd_JSONOutput(t *testing.T) {
	mock := &mockAnswerService{
		answer: &domain.StructuredAnswer{MainText: "answer", Confidence: 0.5},
	}
	old := answerService
	answerService = mock
	defer func() {
		answerService = old
		askJSON = false
	}()

	out := executeCommand(t, "ask", "question", "--document", "doc-1", "--json")

	assert.Contains(t, out, `"MainText": "answer"`)
}

func TestAskCmd_NoServiceConfigured(t *testing.T) {
	old := answerService
	answerService = nil
	defer func() { answerService = old }()

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"ask", "question", "--document", "doc-1"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "answer service not configured")
}

func TestPresetsCmd_WithTitle(t *testing.T) {
	mock := &mockAnswerService{}
	old := answerService
	answerService = mock
	defer func() { answerService = old }()

	out := executeCommand(t, "presets", "深度学习综述")

	assert.Contains(t, out, "《深度学习综述》的主要研究内容是什么？")
}
