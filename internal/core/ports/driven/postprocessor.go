package driven

import (
	"context"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
)

// PostProcessor turns a document's extracted text into chunks.
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process splits text into ordered chunks for doc. Chunk indices
	// are contiguous from 0. Embeddings are left empty.
	Process(ctx context.Context, doc *domain.Document, text string) ([]domain.Chunk, error)
}
