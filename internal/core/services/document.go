package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
	"github.com/custodia-labs/deepdocs/internal/core/ports/driven"
	"github.com/custodia-labs/deepdocs/internal/core/ports/driving"
	"github.com/custodia-labs/deepdocs/internal/logger"
	"github.com/custodia-labs/deepdocs/internal/postprocessors/chunker"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages the documents in the library.
type DocumentService struct {
	docStore        driven.DocumentStore
	collectionStore driven.CollectionStore
	scanner         driven.FileScanner
	extractor       driven.TextExtractor
	indexing        driving.IndexingService
	chunkOverlap    int

	// opener launches the platform file handler. Replaced in tests.
	opener func(path string) error
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	docStore driven.DocumentStore,
	collectionStore driven.CollectionStore,
	scanner driven.FileScanner,
) *DocumentService {
	return &DocumentService{
		docStore:        docStore,
		collectionStore: collectionStore,
		scanner:         scanner,
		chunkOverlap:    chunker.DefaultChunkOverlap,
		opener:          openPath,
	}
}

// SetIndexingService sets the service used to report index status in details.
func (s *DocumentService) SetIndexingService(indexing driving.IndexingService) {
	s.indexing = indexing
}

// SetExtractor sets the extractor used by GetContent for documents
// that have no chunks yet.
func (s *DocumentService) SetExtractor(extractor driven.TextExtractor) {
	s.extractor = extractor
}

// SetChunkOverlap sets the overlap used to stitch together chunks that
// do not record their own.
func (s *DocumentService) SetChunkOverlap(overlap int) {
	if overlap >= 0 {
		s.chunkOverlap = overlap
	}
}

// Add registers files and directories.
// Errors for individual paths are joined; the remaining paths are still added.
func (s *DocumentService) Add(ctx context.Context, paths []string) ([]domain.Document, error) {
	added := make([]domain.Document, 0)
	var errs []error

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			errs = append(errs, fmt.Errorf("resolve %s: %w", p, err))
			continue
		}

		info, err := s.scanner.Stat(ctx, abs)
		if err != nil {
			errs = append(errs, fmt.Errorf("stat %s: %w", abs, err))
			continue
		}

		if !info.IsDir {
			doc, err := s.addFile(ctx, info)
			if err != nil {
				errs = append(errs, err)
			} else if doc != nil {
				added = append(added, *doc)
			}
			continue
		}

		logger.Debug("Scanning directory %s", abs)
		for path, err := range s.scanner.Files(ctx, abs) {
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return added, ctxErr
				}
				errs = append(errs, err)
				continue
			}
			fileInfo, err := s.scanner.Stat(ctx, path)
			if err != nil {
				errs = append(errs, fmt.Errorf("stat %s: %w", path, err))
				continue
			}
			doc, err := s.addFile(ctx, fileInfo)
			if err != nil {
				errs = append(errs, err)
			} else if doc != nil {
				added = append(added, *doc)
			}
		}
	}

	logger.Info("Added %d documents", len(added))
	return added, errors.Join(errs...)
}

// addFile inserts a single file. Returns nil when the path already exists.
func (s *DocumentService) addFile(ctx context.Context, info driven.FileInfo) (*domain.Document, error) {
	id, inserted, err := s.docStore.InsertDocument(ctx, &domain.Document{
		Path:       info.Path,
		Name:       info.Name,
		Size:       info.Size,
		ModifiedAt: info.ModifiedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("add %s: %w", info.Path, err)
	}
	if !inserted {
		logger.Debug("Already in library: %s", info.Path)
		return nil, nil
	}
	return s.docStore.GetDocument(ctx, id)
}

// List returns all documents.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.docStore.ListDocuments(ctx)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id int64) (*domain.Document, error) {
	doc, err := s.docStore.GetDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get document %d: %w", id, err)
	}
	return doc, nil
}

// GetContent returns the document text. Indexed documents are rebuilt
// from their chunks; others are extracted from the file when possible.
func (s *DocumentService) GetContent(ctx context.Context, id int64) (string, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	chunks, err := s.docStore.ListChunks(ctx, []int64{id})
	if err != nil {
		return "", fmt.Errorf("list chunks of document %d: %w", id, err)
	}

	if len(chunks) == 0 {
		if s.extractor == nil {
			return "", nil
		}
		extraction := s.extractor.Extract(ctx, doc.Path)
		if extraction.Status == domain.ExtractionFailed {
			return "", extraction.Err
		}
		return extraction.Text, nil
	}

	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Content
	}
	// Stitch with the overlap the chunks were cut with, which may differ
	// from the current setting until the document is reindexed.
	overlap := s.chunkOverlap
	if _, sig, ok := domain.SplitFingerprint(doc.Fingerprint); ok && sig.ChunkSize > 0 {
		overlap = sig.Overlap
	}
	return chunker.Reconstruct(parts, overlap), nil
}

// GetDetails returns metadata for display.
func (s *DocumentService) GetDetails(ctx context.Context, id int64) (*driving.DocumentDetails, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := s.docStore.CountChunks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count chunks of document %d: %w", id, err)
	}

	details := &driving.DocumentDetails{
		Document:   *doc,
		ChunkCount: count,
		Status:     domain.IndexStatusNotIndexed,
	}
	if count > 0 {
		details.Status = domain.IndexStatusIndexed
	}

	if s.indexing != nil {
		status, err := s.indexing.Status(ctx, id)
		if err != nil {
			return nil, err
		}
		details.Status = status
	}

	if s.collectionStore != nil {
		cols, err := s.collectionStore.DocumentCollections(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("collections of document %d: %w", id, err)
		}
		details.Collections = cols
	}

	return details, nil
}

// UpdateMetadata changes the category and/or tags of a document.
func (s *DocumentService) UpdateMetadata(ctx context.Context, id int64, update domain.DocumentMetadataUpdate) error {
	if update.IsEmpty() {
		return fmt.Errorf("%w: nothing to update", domain.ErrInvalidInput)
	}
	if err := s.docStore.UpdateDocumentMetadata(ctx, id, update); err != nil {
		return fmt.Errorf("update document %d: %w", id, err)
	}
	return nil
}

// Delete removes documents with their chunks and memberships atomically.
func (s *DocumentService) Delete(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.docStore.DeleteDocuments(ctx, ids); err != nil {
		return fmt.Errorf("delete documents: %w", err)
	}
	logger.Info("Deleted %d documents", len(ids))
	return nil
}

// DeleteByPath removes the document stored under path, if any.
func (s *DocumentService) DeleteByPath(ctx context.Context, path string) (bool, error) {
	doc, err := s.docStore.GetDocumentByPath(ctx, path)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find %s: %w", path, err)
	}
	if err := s.Delete(ctx, []int64{doc.ID}); err != nil {
		return false, err
	}
	return true, nil
}

// Open opens the document file in the default application.
func (s *DocumentService) Open(ctx context.Context, id int64) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.opener(doc.Path)
}

// PruneMissing deletes documents whose file no longer exists.
func (s *DocumentService) PruneMissing(ctx context.Context) (int, error) {
	docs, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return 0, fmt.Errorf("list documents: %w", err)
	}

	var missing []int64
	for _, doc := range docs {
		_, err := s.scanner.Stat(ctx, doc.Path)
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("Missing file: %s", doc.Path)
			missing = append(missing, doc.ID)
		}
	}

	if err := s.Delete(ctx, missing); err != nil {
		return 0, err
	}
	return len(missing), nil
}

// openPath opens a path using the system default handler.
func openPath(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
