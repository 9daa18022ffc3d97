package driving

import (
	"context"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
)

// CollectionService manages user-defined groups of documents.
type CollectionService interface {
	// Create validates and stores a new collection.
	Create(ctx context.Context, c domain.Collection) (*domain.Collection, error)

	// Get retrieves a collection by ID.
	Get(ctx context.Context, id int64) (*domain.Collection, error)

	// List returns all collections, newest first.
	List(ctx context.Context) ([]domain.Collection, error)

	// Update applies a partial update.
	Update(ctx context.Context, id int64, update domain.CollectionUpdate) (*domain.Collection, error)

	// Delete removes a collection. Its documents are kept.
	Delete(ctx context.Context, id int64) error

	// AddDocuments adds documents to a collection. Existing members are ignored.
	AddDocuments(ctx context.Context, collectionID int64, documentIDs []int64) error

	// RemoveDocument removes a document from a collection.
	RemoveDocument(ctx context.Context, collectionID, documentID int64) error

	// Documents returns the member documents of a collection.
	Documents(ctx context.Context, collectionID int64) ([]domain.Document, error)

	// Export writes the member documents of a collection to dest.
	// Members whose file no longer exists are skipped.
	Export(ctx context.Context, collectionID int64, format ExportFormat, dest string) (*ExportResult, error)
}

// ExportFormat selects how a collection is exported.
type ExportFormat string

// Supported export formats.
const (
	// ExportFolder copies member files into a directory.
	ExportFolder ExportFormat = "folder"

	// ExportZip writes member files into a zip archive.
	ExportZip ExportFormat = "zip"

	// ExportCSV writes an id,name,path listing.
	ExportCSV ExportFormat = "csv"
)

// IsValid returns true if the format is recognised.
func (f ExportFormat) IsValid() bool {
	switch f {
	case ExportFolder, ExportZip, ExportCSV:
		return true
	default:
		return false
	}
}

// ExportResult describes a finished export.
type ExportResult struct {
	// Path is the written directory or file.
	Path string

	// Count is the number of documents written.
	Count int

	// Skipped lists member paths that no longer exist.
	Skipped []string
}
