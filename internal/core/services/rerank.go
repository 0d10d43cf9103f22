package services

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/logger"
)

// Similarity tier thresholds. High-tier candidates are admitted
// unconditionally; medium and low tiers must additionally clear a
// text-quality gate.
const (
	highSimilarityTier   = 0.70
	mediumSimilarityTier = 0.40
	mediumQualityGate    = 0.45
	lowQualityGate       = 0.60
)

// Composite score weights. Changing these shifts candidate order and,
// through the context fingerprint, invalidates the answer cache.
const (
	similarityWeight = 0.5
	qualityWeight    = 0.3
	lengthWeight     = 0.2
)

// rerankFallbackTop is how many candidates survive by raw similarity
// when nothing clears the admission gates.
const rerankFallbackTop = 3

// Keyword groups that mark academically structured text. Each group
// that matches adds to the quality score, capped at three groups.
var qualityKeywordGroups = [][]string{
	{"研究", "study", "research", "analysis", "分析"},
	{"方法", "实验", "method", "approach", "experiment", "data"},
	{"结果", "结论", "发现", "result", "conclusion", "finding"},
}

var boilerplateMarkers = []string{
	"copyright", "all rights reserved", "版权所有", "保留所有权利",
}

// Reranker orders retrieval candidates by a composite of similarity,
// text quality and length before they reach the prompt.
type Reranker struct{}

// NewReranker creates a new reranker.
func NewReranker() *Reranker {
	return &Reranker{}
}

// Rerank admits candidates through the tier gates, scores the admitted
// set and returns the top topK by composite score. Given a non-empty
// input the result is never empty: when no candidate clears a gate, the
// top candidates by raw similarity are used instead. The ordering is
// deterministic for a fixed input.
func (r *Reranker) Rerank(candidates []domain.RetrievalCandidate, topK int) []domain.RetrievalCandidate {
	if len(candidates) == 0 {
		return nil
	}
	if topK <= 0 {
		topK = domain.DefaultConfig().TopKRetrieval
	}

	var high, medium, low []domain.RetrievalCandidate
	for _, c := range candidates {
		c.TextQuality = textQuality(c.Chunk.Text)
		switch {
		case c.Similarity >= highSimilarityTier:
			high = append(high, c)
		case c.Similarity >= mediumSimilarityTier:
			if c.TextQuality >= mediumQualityGate {
				medium = append(medium, c)
			}
		default:
			if c.TextQuality >= lowQualityGate {
				low = append(low, c)
			}
		}
	}

	admitted := make([]domain.RetrievalCandidate, 0, len(high)+len(medium)+len(low))
	admitted = append(admitted, high...)
	admitted = append(admitted, medium...)
	admitted = append(admitted, low...)

	if len(admitted) == 0 {
		logger.Debug("rerank: no candidate cleared admission, falling back to top %d by similarity", rerankFallbackTop)
		admitted = topBySimilarity(candidates, rerankFallbackTop)
	}

	for i := range admitted {
		admitted[i].Score = similarityWeight*admitted[i].Similarity +
			qualityWeight*admitted[i].TextQuality +
			lengthWeight*lengthFactor(admitted[i].Chunk.Text)
	}

	sort.SliceStable(admitted, func(i, j int) bool {
		return admitted[i].Score > admitted[j].Score
	})

	if len(admitted) > topK {
		admitted = admitted[:topK]
	}
	return admitted
}

// topBySimilarity returns the n highest-similarity candidates with ties
// kept in input order.
func topBySimilarity(candidates []domain.RetrievalCandidate, n int) []domain.RetrievalCandidate {
	out := make([]domain.RetrievalCandidate, len(candidates))
	copy(out, candidates)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})
	if len(out) > n {
		out = out[:n]
	}
	for i := range out {
		out[i].TextQuality = textQuality(out[i].Chunk.Text)
	}
	return out
}

// textQuality scores a chunk's text in [0, 1]: academic keyword groups
// raise it, extreme length, punctuation overload and boilerplate
// markers lower it.
func textQuality(text string) float64 {
	score := 0.5
	lower := strings.ToLower(text)

	for _, group := range qualityKeywordGroups {
		for _, kw := range group {
			if strings.Contains(lower, kw) {
				score += 0.1
				break
			}
		}
	}

	length := utf8.RuneCountInString(text)
	switch {
	case length < 50:
		score -= 0.2
	case length > 2000:
		score -= 0.1
	}

	if punctuationDensity(text) > 0.3 {
		score -= 0.2
	}

	for _, marker := range boilerplateMarkers {
		if strings.Contains(lower, marker) {
			score -= 0.4
			break
		}
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func punctuationDensity(text string) float64 {
	var punct, total int
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			punct++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(punct) / float64(total)
}

// lengthFactor rewards chunks in a comfortable reading range.
func lengthFactor(text string) float64 {
	length := utf8.RuneCountInString(text)
	switch {
	case length < 50:
		return 0.3
	case length < 100:
		return 0.7
	case length <= 800:
		return 1.0
	case length <= 2000:
		return 0.8
	default:
		return 0.6
	}
}
