package answer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/logger"
)

// Section markers emitted by the prompt's output format. Matching also
// accepts the English variants since models drift between languages.
var (
	findingsMarkers    = []string{"关键发现", "Key Findings"}
	limitationsMarkers = []string{"局限性", "Limitations"}
)

const (
	maxKeyFindings    = 5
	maxSourceTextLen  = 500
	fallbackSourceTop = 3
)

var (
	citationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`【来源(\d+)】`),
		regexp.MustCompile(`来源(\d+)`),
		regexp.MustCompile(`(?i)\bsource\s+(\d+)\b`),
	}
	numberedItemPattern = regexp.MustCompile(`(?:\d+[.、]|（\d+）|\(\d+\))\s*`)
	sentenceEndPattern  = regexp.MustCompile(`[。！？.!?]`)
)

// Processor validates and structures raw generation output.
type Processor struct {
	minAnswerLength int
	maxAnswerLength int
	minConfidence   float64
}

// NewProcessor builds a processor from the validation thresholds in cfg.
func NewProcessor(cfg domain.Config) *Processor {
	return &Processor{
		minAnswerLength: cfg.MinAnswerLength,
		maxAnswerLength: cfg.MaxAnswerLength,
		minConfidence:   cfg.MinConfidence,
	}
}

// Process parses raw into a StructuredAnswer grounded on candidates.
// Output that fails validation is replaced by a fallback answer; Process
// itself never returns nil.
func (p *Processor) Process(raw string, candidates []domain.RetrievalCandidate, question, documentID string) *domain.StructuredAnswer {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Fallback(domain.FallbackProcessingError, question, documentID)
	}

	mainText, findings, limitations := splitSections(raw)
	sources := extractSources(raw, candidates)
	confidence := p.scoreConfidence(raw, mainText, sources)

	result := &domain.StructuredAnswer{
		MainText:    mainText,
		KeyFindings: findings,
		Limitations: limitations,
		Sources:     sources,
		Confidence:  confidence,
		Metadata: domain.AnswerMetadata{
			DocumentID:      documentID,
			Question:        question,
			ChunksRetrieved: len(candidates),
			Timestamp:       time.Now(),
		},
	}

	if reason := p.validate(result); reason != "" {
		logger.Debug("answer: validation failed (%s), falling back", reason)
		return Fallback(domain.FallbackValidationFailed, question, documentID)
	}
	return result
}

// splitSections separates the main text from the key-findings and
// limitations sections. Markers are located from the end of the text
// backward so an incidental mention inside the main answer does not
// split it.
func splitSections(raw string) (mainText string, findings []string, limitations string) {
	findingsAt := lastMarker(raw, findingsMarkers)
	limitationsAt := lastMarker(raw, limitationsMarkers)
	confidenceAt := lastMarker(raw, confidenceSectionMarkers)

	// The trailing confidence self-assessment is a boundary too; it must
	// not leak into the last finding or the limitations text.
	starts := []int{findingsAt.start, limitationsAt.start, confidenceAt.start}

	mainText = cleanSection(raw[:nextBoundary(0, len(raw), starts)])

	if findingsAt.start >= 0 {
		end := nextBoundary(findingsAt.end, len(raw), starts)
		findings = parseFindings(raw[findingsAt.end:end])
	}
	if limitationsAt.start >= 0 {
		end := nextBoundary(limitationsAt.end, len(raw), starts)
		limitations = cleanSection(raw[limitationsAt.end:end])
	}
	return mainText, findings, limitations
}

// nextBoundary returns the smallest marker start within [from, end),
// or end when no marker follows.
func nextBoundary(from, end int, starts []int) int {
	for _, s := range starts {
		if s >= from && s < end {
			end = s
		}
	}
	return end
}

type markerPos struct{ start, end int }

func lastMarker(text string, markers []string) markerPos {
	best := markerPos{start: -1, end: -1}
	for _, m := range markers {
		if idx := strings.LastIndex(text, m); idx > best.start {
			best = markerPos{start: idx, end: idx + len(m)}
		}
	}
	return best
}

// parseFindings extracts the numbered items of a findings section.
// Without numbering it degrades to sentence splitting, capped either way.
func parseFindings(section string) []string {
	section = cleanSection(section)
	if section == "" {
		return nil
	}

	var items []string
	if marks := numberedItemPattern.FindAllStringIndex(section, -1); len(marks) > 0 {
		for i, mark := range marks {
			end := len(section)
			if i+1 < len(marks) {
				end = marks[i+1][0]
			}
			if item := strings.TrimSpace(section[mark[1]:end]); item != "" {
				items = append(items, item)
			}
		}
	} else {
		for _, sentence := range sentenceEndPattern.Split(section, -1) {
			if s := strings.TrimSpace(sentence); s != "" {
				items = append(items, s)
			}
		}
	}

	if len(items) > maxKeyFindings {
		items = items[:maxKeyFindings]
	}
	return items
}

// cleanSection strips marker punctuation and surrounding decoration
// left over after a section split.
func cleanSection(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "：:*# \n\t")
	s = strings.TrimRight(s, "*# \n\t")
	return strings.TrimSpace(s)
}

// extractSources maps inline citation markers back to candidates. The
// markers are 1-based; duplicate citations collapse to the first
// occurrence. Without any marker the top candidates are cited.
func extractSources(raw string, candidates []domain.RetrievalCandidate) []domain.Source {
	var sources []domain.Source
	seen := make(map[int]bool)

	for _, pattern := range citationPatterns {
		for _, match := range pattern.FindAllStringSubmatch(raw, -1) {
			n, err := strconv.Atoi(match[1])
			if err != nil {
				continue
			}
			idx := n - 1
			if idx < 0 || idx >= len(candidates) || seen[idx] {
				continue
			}
			seen[idx] = true
			sources = append(sources, sourceFromCandidate(n, candidates[idx]))
		}
		if len(sources) > 0 {
			break
		}
	}

	if len(sources) == 0 {
		limit := len(candidates)
		if limit > fallbackSourceTop {
			limit = fallbackSourceTop
		}
		for i := 0; i < limit; i++ {
			sources = append(sources, sourceFromCandidate(i+1, candidates[i]))
		}
	}
	return sources
}

func sourceFromCandidate(sourceIndex int, c domain.RetrievalCandidate) domain.Source {
	text := strings.TrimSpace(c.Chunk.Text)
	if runes := []rune(text); len(runes) > maxSourceTextLen {
		text = string(runes[:maxSourceTextLen])
	}
	return domain.Source{
		SourceIndex: sourceIndex,
		ChunkIndex:  c.Chunk.ChunkIndex,
		Text:        text,
		Similarity:  c.Similarity,
		Page:        c.Chunk.Page,
		Section:     c.Chunk.Section,
	}
}

// validate returns a non-empty reason when the answer must be rejected.
func (p *Processor) validate(a *domain.StructuredAnswer) string {
	runes := []rune(a.MainText)
	if len(runes) < p.minAnswerLength {
		return "answer too short"
	}
	if a.Confidence < p.minConfidence {
		return "confidence below threshold"
	}

	head := strings.ToLower(string(runes[:min(len(runes), 50)]))
	for _, phrase := range refusalPhrases {
		if strings.Contains(head, phrase) {
			return "refusal phrasing"
		}
	}
	return ""
}

var refusalPhrases = []string{
	"抱歉", "无法", "不知道", "不清楚", "错误",
	"sorry", "i cannot", "i can't", "i don't know",
}
