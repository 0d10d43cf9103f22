// Package chunker provides fixed-size text chunking with overlap for
// document ingestion.
package chunker

import (
	"strings"
	"unicode"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Processor splits document text into fixed-size overlapping chunks.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Process splits text into chunks for the given document. ChunkIndex is
// the ordinal position and stays stable across rebuilds of the same
// text. Sizes are measured in runes so multi-byte text never splits
// inside a character.
func (p *Processor) Process(text, documentID, collectionID string) []domain.Chunk {
	runes := []rune(cleanText(text))
	if len(runes) == 0 {
		return nil
	}

	step := p.chunkSize - p.overlap
	estimated := (len(runes) / step) + 1
	chunks := make([]domain.Chunk, 0, estimated)

	index := 0
	for start := 0; start < len(runes); start += step {
		end := start + p.chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		chunks = append(chunks, domain.Chunk{
			DocumentID:   documentID,
			CollectionID: collectionID,
			ChunkIndex:   index,
			Text:         string(runes[start:end]),
		})
		index++

		if end == len(runes) {
			break
		}
	}

	return chunks
}

// cleanText normalises extracted text before splitting: control
// characters are dropped, horizontal whitespace runs collapse to one
// space, and blank-line runs collapse to a single paragraph break.
func cleanText(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	newlines := 0
	spaces := 0
	for _, r := range text {
		switch {
		case r == '\n':
			newlines++
			spaces = 0
		case unicode.IsSpace(r):
			if newlines == 0 {
				spaces++
			}
		case unicode.IsControl(r):
			continue
		default:
			if newlines >= 2 {
				b.WriteString("\n\n")
			} else if newlines == 1 {
				b.WriteRune('\n')
			} else if spaces > 0 && b.Len() > 0 {
				b.WriteRune(' ')
			}
			newlines = 0
			spaces = 0
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
