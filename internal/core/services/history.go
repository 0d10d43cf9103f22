package services

import (
	"sort"
	"strings"
	"unicode"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// maxTurnKeywords bounds the keyword set extracted from one text.
const maxTurnKeywords = 10

var historyStopwords = map[string]bool{
	"的": true, "是": true, "在": true, "有": true, "和": true,
	"与": true, "对": true, "为": true, "了": true, "也": true,
	"可以": true, "能够": true, "这个": true, "那个": true,
	"什么": true, "如何": true, "怎么": true,
	"the": true, "a": true, "an": true, "of": true, "in": true,
	"on": true, "is": true, "are": true, "was": true, "were": true,
	"to": true, "and": true, "or": true, "for": true, "with": true,
	"what": true, "how": true, "why": true, "this": true, "that": true,
}

// HistoryFilter selects the prior turns most relevant to a question.
type HistoryFilter struct{}

// NewHistoryFilter creates a new history filter.
func NewHistoryFilter() *HistoryFilter {
	return &HistoryFilter{}
}

// Filter scores each prior user turn by keyword overlap with the
// question, keeps the top maxTurns of them along with each one's
// immediately following assistant turn, and returns the selection in
// its original chronological order.
func (f *HistoryFilter) Filter(history []domain.Turn, question string, maxTurns int) []domain.Turn {
	if len(history) == 0 || maxTurns <= 0 {
		return nil
	}

	questionKeywords := extractKeywords(question)
	if len(questionKeywords) == 0 {
		return nil
	}

	type scoredTurn struct {
		index int
		score float64
	}

	var scored []scoredTurn
	for i, turn := range history {
		if turn.Role != domain.RoleUser {
			continue
		}
		overlap := keywordOverlap(questionKeywords, extractKeywords(turn.Content))
		if overlap == 0 {
			continue
		}
		score := float64(overlap) / float64(len(questionKeywords))
		scored = append(scored, scoredTurn{index: i, score: score})
	}
	if len(scored) == 0 {
		return nil
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if len(scored) > maxTurns {
		scored = scored[:maxTurns]
	}

	// Pull in each selected user turn plus its answer, then restore
	// chronological order.
	selected := make(map[int]bool)
	for _, st := range scored {
		selected[st.index] = true
		if st.index+1 < len(history) && history[st.index+1].Role == domain.RoleAssistant {
			selected[st.index+1] = true
		}
	}

	indices := make([]int, 0, len(selected))
	for idx := range selected {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	out := make([]domain.Turn, 0, len(indices))
	for _, idx := range indices {
		out = append(out, history[idx])
	}
	return out
}

// extractKeywords tokenises text into lowercased latin words and CJK
// bigrams, dropping stopwords and single characters. Bigrams stand in
// for word segmentation: two questions about the same topic share the
// topic's character pairs even when the surrounding phrasing differs.
func extractKeywords(text string) []string {
	var keywords []string
	add := func(word string) {
		if len([]rune(word)) < 2 || historyStopwords[word] {
			return
		}
		if len(keywords) < maxTurnKeywords {
			keywords = append(keywords, word)
		}
	}

	var latin strings.Builder
	var han []rune
	flushLatin := func() {
		if latin.Len() > 0 {
			add(strings.ToLower(latin.String()))
			latin.Reset()
		}
	}
	flushHan := func() {
		for i := 0; i+1 < len(han); i++ {
			add(string(han[i : i+2]))
		}
		han = han[:0]
	}

	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			flushLatin()
			han = append(han, r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			flushHan()
			latin.WriteRune(r)
		default:
			flushLatin()
			flushHan()
		}
	}
	flushLatin()
	flushHan()
	return keywords
}

func keywordOverlap(a, b []string) int {
	set := make(map[string]bool, len(a))
	for _, w := range a {
		set[w] = true
	}
	overlap := 0
	seen := make(map[string]bool, len(b))
	for _, w := range b {
		if set[w] && !seen[w] {
			overlap++
			seen[w] = true
		}
	}
	return overlap
}
