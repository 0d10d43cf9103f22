package prompt

import "fmt"

// maxPresetQuestions bounds the suggestion list shown for a document.
const maxPresetQuestions = 8

var basePresetQuestions = []string{
	"这篇文献的主要论点是什么？",
	"文献中使用了哪些研究方法？",
	"这项研究有什么创新点和贡献？",
	"研究存在哪些局限性？",
	"主要结论和发现是什么？",
	"文献的理论框架是什么？",
	"研究的实际应用价值如何？",
	"文献中提到了哪些未来研究方向？",
}

// PresetQuestions returns suggested questions for a document. When a
// title is known, two title-specific questions displace the tail of the
// generic list.
func PresetQuestions(title string) []string {
	questions := make([]string, 0, maxPresetQuestions)
	if title != "" {
		questions = append(questions,
			fmt.Sprintf("请解释《%s》这篇文献的核心内容", title),
			fmt.Sprintf("《%s》与其他相关研究有什么区别？", title),
		)
	}
	for _, q := range basePresetQuestions {
		if len(questions) >= maxPresetQuestions {
			break
		}
		questions = append(questions, q)
	}
	return questions
}
