package prompt

import (
	"math"
	"unicode"
)

// Token weights for the language-aware estimate. These must stay in
// lockstep with whatever budget the generation model actually enforces;
// changing them shifts every compression decision.
const (
	cjkTokenWeight    = 1.3
	wordTokenWeight   = 1.0
	symbolTokenWeight = 0.5
)

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r)
}

func isWordRune(r rune) bool {
	return !isCJK(r) && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

// EstimateTokens approximates how many tokens text costs: CJK
// characters weigh 1.3 each, runs of Latin letters or digits weigh 1
// per word, and remaining non-whitespace symbols weigh 0.5. The result
// is rounded up. Whitespace is free, which keeps the estimate additive
// when sections are joined with blank lines.
func EstimateTokens(text string) int {
	var cjk, words, symbols int
	inWord := false
	for _, r := range text {
		switch {
		case isCJK(r):
			cjk++
			inWord = false
		case isWordRune(r):
			if !inWord {
				words++
				inWord = true
			}
		case unicode.IsSpace(r):
			inWord = false
		default:
			symbols++
			inWord = false
		}
	}
	estimate := float64(cjk)*cjkTokenWeight +
		float64(words)*wordTokenWeight +
		float64(symbols)*symbolTokenWeight
	return int(math.Ceil(estimate))
}
