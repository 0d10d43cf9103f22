package prompt

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// Section markers. Compression keys off contextHeader, so it must
// appear exactly once per prompt.
const (
	contextHeader  = "**相关文献内容：**"
	historyHeader  = "**对话历史：**"
	questionHeader = "**用户问题：**"
	emptyContext   = "暂无相关内容"
)

const roleInstructions = `你是一个专业的学术文献助手，擅长基于提供的文献内容回答问题。请遵循以下原则：

1. **准确性**：基于提供的文献内容回答，不要编造信息
2. **完整性**：尽可能全面地回答问题，但保持简洁
3. **引用性**：明确标注引用来源，使用【来源X】格式
4. **结构化**：使用清晰的段落和要点组织答案

如果文献内容不足以回答问题，请明确说明并提供部分相关信息。`

const outputFormat = `请按以下格式回答：

**答案：**
[基于文献内容的详细回答]

**关键发现：**
1. [要点一]
2. [要点二]

**局限性：**
[回答的局限性说明，如无可省略]

**置信度：**
[很高/高/中/低/很低]`

// QuestionType classifies what kind of answer a question is after, used
// to pick one line of guidance text.
type QuestionType string

const (
	QuestionMethod     QuestionType = "method"
	QuestionConclusion QuestionType = "conclusion"
	QuestionInnovation QuestionType = "innovation"
	QuestionLimitation QuestionType = "limitation"
	QuestionSummary    QuestionType = "summary"
	QuestionGeneral    QuestionType = "general"
)

var questionTypeKeywords = []struct {
	qt       QuestionType
	keywords []string
}{
	{QuestionMethod, []string{"方法", "怎么", "如何", "method", "approach", "how"}},
	{QuestionConclusion, []string{"结论", "结果", "发现", "conclusion", "result", "finding"}},
	{QuestionInnovation, []string{"创新", "贡献", "新颖", "innovation", "contribution", "novel"}},
	{QuestionLimitation, []string{"局限", "不足", "缺陷", "limitation", "weakness", "shortcoming"}},
	{QuestionSummary, []string{"总结", "概括", "主要内容", "summary", "summarize", "overview"}},
}

var questionGuidance = map[QuestionType]string{
	QuestionMethod:     "请重点说明文献中使用的研究方法、实验设计和数据来源。",
	QuestionConclusion: "请重点说明文献的主要结论和支撑这些结论的证据。",
	QuestionInnovation: "请重点说明文献的创新点以及与已有研究的区别。",
	QuestionLimitation: "请重点说明研究的局限性和适用范围。",
	QuestionSummary:    "请概括文献的核心内容，覆盖问题、方法与结论。",
	QuestionGeneral:    "请基于文献内容直接回答问题。",
}

// ClassifyQuestion picks the first matching type in a fixed priority
// order; unmatched questions are general.
func ClassifyQuestion(question string) QuestionType {
	lower := strings.ToLower(question)
	for _, entry := range questionTypeKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.qt
			}
		}
	}
	return QuestionGeneral
}

// Builder assembles prompts. The history window is bounded at
// construction; the token budget is applied separately via Compress so
// callers can inspect the uncompressed prompt.
type Builder struct {
	maxHistoryTurns int
}

func NewBuilder(maxHistoryTurns int) *Builder {
	if maxHistoryTurns <= 0 {
		maxHistoryTurns = domain.DefaultConfig().MaxHistoryTurns
	}
	return &Builder{maxHistoryTurns: maxHistoryTurns}
}

// Build assembles the full prompt from instructions, ranked context,
// recent history and the question. Candidates must already be in rank
// order; their position determines the 1-based source index that
// answers cite.
func (b *Builder) Build(question string, candidates []domain.RetrievalCandidate, history []domain.Turn) string {
	sections := []string{
		roleInstructions,
		b.contextSection(candidates),
		b.historySection(history),
		b.questionSection(question),
		outputFormat,
	}

	var kept []string
	for _, s := range sections {
		if strings.TrimSpace(s) != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, "\n\n")
}

func (b *Builder) contextSection(candidates []domain.RetrievalCandidate) string {
	if len(candidates) == 0 {
		return contextHeader + "\n" + emptyContext
	}

	parts := []string{contextHeader}
	for i, c := range candidates {
		text := CleanText(c.Chunk.Text)
		if text == "" {
			continue
		}
		header := fmt.Sprintf("【来源%d】（相关度：%.2f，块ID：%d）", i+1, c.Similarity, c.Chunk.ChunkIndex)
		parts = append(parts, header+"\n"+text)
	}
	if len(parts) == 1 {
		return contextHeader + "\n" + emptyContext
	}
	return strings.Join(parts, "\n\n")
}

func (b *Builder) historySection(history []domain.Turn) string {
	if len(history) == 0 {
		return ""
	}
	recent := history
	if len(recent) > b.maxHistoryTurns*2 {
		recent = recent[len(recent)-b.maxHistoryTurns*2:]
	}

	parts := []string{historyHeader}
	for _, turn := range recent {
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}
		switch turn.Role {
		case domain.RoleUser:
			parts = append(parts, "用户："+truncateRunes(content, 200))
		case domain.RoleAssistant:
			parts = append(parts, "助手："+truncateRunes(content, 200))
		}
	}
	if len(parts) == 1 {
		return ""
	}
	return strings.Join(parts, "\n")
}

func (b *Builder) questionSection(question string) string {
	guidance := questionGuidance[ClassifyQuestion(question)]
	return questionHeader + "\n" + question + "\n" + guidance
}
