package answer

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

const defaultConfidence = 0.5

// confidenceKeywords maps an explicit self-assessment in the output to
// a base score. Ordered so the longer phrases match before their
// substrings (很高 before 高, "very low" before "low").
var confidenceKeywords = []struct {
	keyword string
	score   float64
}{
	{"很高", 0.9},
	{"very high", 0.9},
	{"很低", 0.3},
	{"very low", 0.3},
	{"高", 0.8},
	{"high", 0.8},
	{"中", 0.6},
	{"medium", 0.6},
	{"低", 0.4},
	{"low", 0.4},
}

var structurePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d+[.、]`),
	regexp.MustCompile(`[一二三四五六七八九十][、.]`),
	regexp.MustCompile(`[（(]\d+[）)]`),
	regexp.MustCompile(`首先|其次|然后|最后|另外`),
	regexp.MustCompile(`第一|第二|第三`),
	regexp.MustCompile(`总结|综上|因此|所以`),
}

var confidenceSectionMarkers = []string{"置信度", "Confidence"}

// scoreConfidence derives the answer confidence from the model's own
// assessment blended with citation similarity, then adjusted for length
// and structure. The result is always within [0.1, 1.0].
func (p *Processor) scoreConfidence(raw, mainText string, sources []domain.Source) float64 {
	confidence := extractStatedConfidence(raw)

	if len(sources) > 0 {
		var total float64
		for _, s := range sources {
			total += s.Similarity
		}
		avg := total / float64(len(sources))
		grounding := avg * 1.2
		if grounding > 1.0 {
			grounding = 1.0
		}
		confidence = (confidence + grounding) / 2
	}

	confidence *= p.lengthFactor(utf8.RuneCountInString(mainText))

	if hasStructure(mainText) {
		confidence *= 1.1
	}

	return clampConfidence(confidence)
}

// extractStatedConfidence looks for a confidence section near the end
// of the output and maps its keyword through the fixed table. Absent or
// unrecognized assessments score the neutral default.
func extractStatedConfidence(raw string) float64 {
	at := lastMarker(raw, confidenceSectionMarkers)
	if at.start < 0 {
		return defaultConfidence
	}
	section := strings.ToLower(raw[at.end:])
	for _, entry := range confidenceKeywords {
		if strings.Contains(section, entry.keyword) {
			return entry.score
		}
	}
	return defaultConfidence
}

// lengthFactor penalizes answers outside the configured bounds and
// slightly rewards a comfortable middle range.
func (p *Processor) lengthFactor(length int) float64 {
	switch {
	case length < p.minAnswerLength:
		return 0.7
	case length > p.maxAnswerLength:
		return 0.8
	case length >= 100 && length <= 800:
		return 1.1
	default:
		return 1.0
	}
}

func hasStructure(text string) bool {
	matched := 0
	for _, pattern := range structurePatterns {
		if pattern.MatchString(text) {
			matched++
			if matched >= 2 {
				return true
			}
		}
	}
	return false
}

func clampConfidence(c float64) float64 {
	if c < 0.1 {
		return 0.1
	}
	if c > 1.0 {
		return 1.0
	}
	return c
}
