package driving

import (
	"context"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
)

// IndexingService builds the searchable chunk set of documents.
type IndexingService interface {
	// EnsureIndexed indexes a document unless its chunks are current.
	// Returns the number of chunks written: 0 when the document was
	// already indexed or has no extractable content.
	EnsureIndexed(ctx context.Context, documentID int64) (int, error)

	// Reindex rebuilds the chunks of a document regardless of status.
	Reindex(ctx context.Context, documentID int64) (int, error)

	// Status reports whether a document's chunks match its file.
	Status(ctx context.Context, documentID int64) (domain.IndexStatus, error)

	// IndexAll ensures every document is indexed using up to workers
	// goroutines. Per-document failures are collected in the report and
	// joined into the returned error.
	IndexAll(ctx context.Context, workers int) (IndexReport, error)
}

// IndexReport summarises a batch indexing run.
type IndexReport struct {
	// Documents is the number of documents visited.
	Documents int

	// Indexed is the number of documents that had chunks written.
	Indexed int

	// Chunks is the total number of chunks written.
	Chunks int

	// Failed maps document IDs to their indexing error.
	Failed map[int64]error
}
