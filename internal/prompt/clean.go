package prompt

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxChunkRunes caps how much of one chunk ever reaches the prompt.
const maxChunkRunes = 1000

// CleanText normalises extracted document text for inclusion in a
// prompt: control characters and replacement runes (garbled PDF bytes)
// are dropped, whitespace runs collapse to a single space, and the
// result is capped at maxChunkRunes with an ellipsis.
func CleanText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	pendingSpace := false
	count := 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			pendingSpace = b.Len() > 0
			continue
		}
		if unicode.IsControl(r) || r == utf8.RuneError {
			continue
		}
		if pendingSpace {
			if count >= maxChunkRunes {
				break
			}
			b.WriteRune(' ')
			count++
			pendingSpace = false
		}
		if count >= maxChunkRunes {
			break
		}
		b.WriteRune(r)
		count++
	}
	cleaned := strings.TrimSpace(b.String())
	if count >= maxChunkRunes && utf8.RuneCountInString(text) > maxChunkRunes {
		cleaned += "..."
	}
	return cleaned
}

// truncateRunes shortens s to at most n runes, appending an ellipsis
// when anything was cut.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
