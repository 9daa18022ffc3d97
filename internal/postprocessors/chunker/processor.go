// Package chunker provides a fixed-size sliding-window text chunker.
package chunker

import (
	"context"
	"fmt"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
	"github.com/custodia-labs/deepdocs/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.PostProcessor = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 100

// Split cuts text into windows of size characters. Each window starts
// size-overlap characters after the previous one, so consecutive chunks
// share overlap characters. The final chunk may be shorter. Splitting
// stops once a window would start at or past the end of the text.
//
// Lengths are measured in runes. Empty text yields no chunks.
func Split(text string, size, overlap int) ([]string, error) {
	if err := (domain.ChunkingSettings{Size: size, Overlap: overlap}).Validate(); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}

	runes := []rune(text)
	step := size - overlap
	chunks := make([]string, 0, len(runes)/step+1)

	for start := 0; start < len(runes); start += step {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks, nil
}

// Reconstruct reverses Split by dropping the first overlap characters of
// every chunk after the first. Chunks shorter than the overlap (a trailing
// window that lies entirely inside the previous one) contribute nothing.
func Reconstruct(chunks []string, overlap int) string {
	if len(chunks) == 0 {
		return ""
	}

	out := []rune(chunks[0])
	for _, c := range chunks[1:] {
		r := []rune(c)
		if len(r) <= overlap {
			continue
		}
		out = append(out, r[overlap:]...)
	}
	return string(out)
}

// Processor splits document text into domain chunks.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a chunker processor. An overlap that is not smaller than
// the chunk size is rejected with domain.ErrInvalidConfiguration.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if err := (domain.ChunkingSettings{Size: p.chunkSize, Overlap: p.overlap}).Validate(); err != nil {
		return nil, fmt.Errorf("chunker: %w", err)
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured window length.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Process splits text into chunks owned by doc.
func (p *Processor) Process(_ context.Context, doc *domain.Document, text string) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("chunker: %w: document is nil", domain.ErrInvalidInput)
	}

	parts, err := Split(text, p.chunkSize, p.overlap)
	if err != nil {
		return nil, err
	}

	chunks := make([]domain.Chunk, len(parts))
	for i, part := range parts {
		chunks[i] = domain.Chunk{
			DocumentID: doc.ID,
			Index:      i,
			Content:    part,
		}
	}

	return chunks, nil
}
