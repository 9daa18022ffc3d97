package driving

import (
	"context"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
)

// DocumentService manages the documents in the library.
type DocumentService interface {
	// Add registers files and directories. Directories are walked lazily,
	// skipping hidden entries. Paths already in the library are ignored.
	// Returns the documents that were newly added.
	Add(ctx context.Context, paths []string) ([]domain.Document, error)

	// List returns all documents.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, id int64) (*domain.Document, error)

	// GetContent returns the document text reconstructed from its chunks.
	GetContent(ctx context.Context, id int64) (string, error)

	// GetDetails returns metadata for display.
	GetDetails(ctx context.Context, id int64) (*DocumentDetails, error)

	// UpdateMetadata changes the category and/or tags of a document.
	UpdateMetadata(ctx context.Context, id int64, update domain.DocumentMetadataUpdate) error

	// Delete removes documents with their chunks and memberships atomically.
	Delete(ctx context.Context, ids []int64) error

	// DeleteByPath removes the document stored under path, if any.
	// Returns false when no document has that path.
	DeleteByPath(ctx context.Context, path string) (bool, error)

	// Open opens the document file in the default application.
	Open(ctx context.Context, id int64) error

	// PruneMissing deletes documents whose file no longer exists.
	// Returns the number of documents removed.
	PruneMissing(ctx context.Context) (int, error)
}

// DocumentDetails provides a display view of a document.
type DocumentDetails struct {
	Document domain.Document

	// ChunkCount is the number of chunks.
	ChunkCount int

	// Status is the current index status.
	Status domain.IndexStatus

	// Collections lists the collections the document belongs to.
	Collections []domain.Collection
}
