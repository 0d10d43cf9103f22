package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "empty", text: "", want: 0},
		{name: "single word", text: "hello", want: 1},
		{name: "latin sentence", text: "the quick brown fox", want: 4},
		{name: "cjk only", text: "研究方法", want: 6}, // 4 × 1.3 = 5.2, ceil 6
		{name: "punctuation", text: "a, b.", want: 3}, // 2 words + 2 symbols × 0.5
		{name: "digits count as words", text: "chapter 12", want: 2},
		{name: "whitespace is free", text: "a    b\n\nc", want: 3},
		{name: "mixed", text: "方法：ablation study", want: 6}, // 2×1.3 + 0.5 + 2 = 5.1, ceil 6
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateTokens(tt.text))
		})
	}
}

func TestEstimateTokensDeterministic(t *testing.T) {
	text := "基于 transformer 的模型，在 GLUE 上取得了 88.5 的成绩。"
	first := EstimateTokens(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, EstimateTokens(text))
	}
}

func TestEstimateTokensAdditiveAcrossJoins(t *testing.T) {
	a := "第一部分的内容 including some english"
	b := "第二部分：more text here."

	joined := EstimateTokens(a + "\n\n" + b)
	assert.Equal(t, EstimateTokens(a)+EstimateTokens(b), joined)
}
