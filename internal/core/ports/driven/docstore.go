package driven

import (
	"context"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
)

// DocumentStore persists documents and their chunks.
// Backed by SQLite for durable storage.
type DocumentStore interface {
	// ListDocuments returns all documents ordered by ID.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetDocument(ctx context.Context, id int64) (*domain.Document, error)

	// GetDocumentByPath retrieves a document by its unique path.
	// Returns domain.ErrNotFound if it does not exist.
	GetDocumentByPath(ctx context.Context, path string) (*domain.Document, error)

	// GetDocuments retrieves the documents with the given IDs.
	// Unknown IDs are skipped.
	GetDocuments(ctx context.Context, ids []int64) ([]domain.Document, error)

	// InsertDocument stores a new document and returns its ID.
	// Re-inserting an existing path is a no-op: the existing ID is
	// returned and inserted is false.
	InsertDocument(ctx context.Context, doc *domain.Document) (id int64, inserted bool, err error)

	// UpdateDocumentMetadata applies the non-nil fields of update.
	UpdateDocumentMetadata(ctx context.Context, id int64, update domain.DocumentMetadataUpdate) error

	// DeleteDocuments removes the documents, their chunks and their
	// collection memberships in a single transaction.
	DeleteDocuments(ctx context.Context, ids []int64) error

	// ListChunks returns chunks ordered by (document_id, chunk_index).
	// A nil ids slice returns every chunk. A non-nil empty slice returns none.
	ListChunks(ctx context.Context, ids []int64) ([]domain.Chunk, error)

	// CountChunks returns the number of chunks stored for a document.
	CountChunks(ctx context.Context, documentID int64) (int, error)

	// InsertChunk stores a single chunk row.
	InsertChunk(ctx context.Context, chunk domain.Chunk) error

	// ReplaceChunks deletes every existing chunk of the document, inserts
	// chunks, and sets the document embedding and fingerprint, all in
	// one transaction.
	ReplaceChunks(ctx context.Context, documentID int64, chunks []domain.Chunk, embedding []float32, fingerprint string) error

	// DeleteChunks removes all chunks of a document and clears its embedding.
	DeleteChunks(ctx context.Context, documentID int64) error

	// SetDocumentEmbedding stores the whole-document embedding.
	SetDocumentEmbedding(ctx context.Context, id int64, embedding []float32) error
}
