package answer

import (
	"time"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// fallbackConfidence is the fixed score of every fallback answer; low
// enough that callers can always distinguish degraded output.
const fallbackConfidence = 0.1

var fallbackMessages = map[domain.FallbackKind]string{
	domain.FallbackNoGrounding:      "抱歉，我在文献中没有找到与您的问题相关的内容。请尝试重新表述问题或查看预设问题。",
	domain.FallbackValidationFailed: "抱歉，生成的答案质量不够理想。请重新提问或尝试更具体的问题。",
	domain.FallbackProcessingError:  "处理您的问题时出现了技术问题。请稍后重试。",
	domain.FallbackUpstreamError:    "抱歉，AI服务暂时不可用。请稍后重试您的问题。",
	domain.FallbackInvalidQuestion:  "请输入一个有效的问题。",
}

// Fallback builds the fixed degraded answer for the given failure kind.
func Fallback(kind domain.FallbackKind, question, documentID string) *domain.StructuredAnswer {
	message, ok := fallbackMessages[kind]
	if !ok {
		message = "抱歉，无法处理您的问题。"
	}
	return &domain.StructuredAnswer{
		MainText:   message,
		Confidence: fallbackConfidence,
		IsFallback: true,
		Metadata: domain.AnswerMetadata{
			DocumentID: documentID,
			Question:   question,
			ErrorType:  kind,
			Timestamp:  time.Now(),
		},
	}
}
