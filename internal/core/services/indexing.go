package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
	"github.com/custodia-labs/deepdocs/internal/core/ports/driven"
	"github.com/custodia-labs/deepdocs/internal/core/ports/driving"
	"github.com/custodia-labs/deepdocs/internal/logger"
)

// Ensure IndexingService implements the interface.
var _ driving.IndexingService = (*IndexingService)(nil)

// IndexingService extracts, chunks and embeds documents.
type IndexingService struct {
	docStore  driven.DocumentStore
	extractor driven.TextExtractor
	processor driven.PostProcessor
	embedder  driven.EmbeddingService
	scanner   driven.FileScanner

	locks keyedMutex
}

// NewIndexingService creates a new indexing service.
// The scanner is optional; without it documents are never reported stale
// because of file changes.
func NewIndexingService(
	docStore driven.DocumentStore,
	extractor driven.TextExtractor,
	processor driven.PostProcessor,
	embedder driven.EmbeddingService,
	scanner driven.FileScanner,
) *IndexingService {
	return &IndexingService{
		docStore:  docStore,
		extractor: extractor,
		processor: processor,
		embedder:  embedder,
		scanner:   scanner,
	}
}

// EnsureIndexed indexes a document unless its chunks are current.
func (s *IndexingService) EnsureIndexed(ctx context.Context, documentID int64) (int, error) {
	unlock := s.locks.Lock(documentID)
	defer unlock()

	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("get document %d: %w", documentID, err)
	}

	status, fingerprint, err := s.status(ctx, doc)
	if err != nil {
		return 0, err
	}
	if !status.NeedsIndexing() {
		logger.Debug("Document %d already indexed, skipping", documentID)
		return 0, nil
	}

	logger.Debug("Document %d is %s", documentID, status)
	return s.index(ctx, doc, fingerprint)
}

// Reindex rebuilds the chunks of a document regardless of status.
func (s *IndexingService) Reindex(ctx context.Context, documentID int64) (int, error) {
	unlock := s.locks.Lock(documentID)
	defer unlock()

	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("get document %d: %w", documentID, err)
	}

	return s.index(ctx, doc, s.currentFingerprint(ctx, doc))
}

// Status reports whether a document's chunks match its file.
func (s *IndexingService) Status(ctx context.Context, documentID int64) (domain.IndexStatus, error) {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return domain.IndexStatusNotIndexed, fmt.Errorf("get document %d: %w", documentID, err)
	}

	status, _, err := s.status(ctx, doc)
	return status, err
}

// IndexAll ensures every document is indexed using up to workers goroutines.
// A failing document does not stop the others.
func (s *IndexingService) IndexAll(ctx context.Context, workers int) (driving.IndexReport, error) {
	logger.Section("Index All")
	report := driving.IndexReport{Failed: make(map[int64]error)}

	docs, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return report, fmt.Errorf("list documents: %w", err)
	}
	report.Documents = len(docs)

	if workers <= 0 {
		workers = 1
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			n, err := s.EnsureIndexed(gctx, doc.ID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				report.Failed[doc.ID] = err
				logger.Warn("Indexing %s failed: %v", doc.Path, err)
			case n > 0:
				report.Indexed++
				report.Chunks += n
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}

	logger.Info("Indexed %d of %d documents (%d chunks, %d failed)",
		report.Indexed, report.Documents, report.Chunks, len(report.Failed))

	if len(report.Failed) == 0 {
		return report, nil
	}

	ids := make([]int64, 0, len(report.Failed))
	for id := range report.Failed {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	errs := make([]error, 0, len(ids))
	for _, id := range ids {
		errs = append(errs, fmt.Errorf("document %d: %w", id, report.Failed[id]))
	}
	return report, errors.Join(errs...)
}

// status computes the index status and the current file fingerprint.
// A chunk set is current only when both the file and the pipeline
// signature match what it was built from.
func (s *IndexingService) status(ctx context.Context, doc *domain.Document) (domain.IndexStatus, string, error) {
	count, err := s.docStore.CountChunks(ctx, doc.ID)
	if err != nil {
		return domain.IndexStatusNotIndexed, "", fmt.Errorf("count chunks of document %d: %w", doc.ID, err)
	}

	fingerprint := s.currentFingerprint(ctx, doc)
	stored, sig, signed := domain.SplitFingerprint(doc.Fingerprint)

	switch {
	case count == 0:
		return domain.IndexStatusNotIndexed, fingerprint, nil
	case !doc.HasEmbedding():
		return domain.IndexStatusStale, fingerprint, nil
	case len(doc.Embedding) != s.embedder.Dimensions():
		return domain.IndexStatusStale, fingerprint, nil
	case !signed || sig != s.signature():
		// Built by another model or chunk layout.
		return domain.IndexStatusStale, fingerprint, nil
	case fingerprint != "" && fingerprint != stored:
		return domain.IndexStatusStale, fingerprint, nil
	default:
		return domain.IndexStatusIndexed, fingerprint, nil
	}
}

// chunkLayout is implemented by processors that split text into
// fixed-size windows.
type chunkLayout interface {
	ChunkSize() int
	Overlap() int
}

// signature describes the pipeline chunks are currently built with.
func (s *IndexingService) signature() domain.IndexSignature {
	sig := domain.IndexSignature{
		Model:      s.embedder.ModelName(),
		Dimensions: s.embedder.Dimensions(),
	}
	if l, ok := s.processor.(chunkLayout); ok {
		sig.ChunkSize = l.ChunkSize()
		sig.Overlap = l.Overlap()
	}
	return sig
}

// currentFingerprint returns the fingerprint of the file as it is now,
// or "" when it cannot be determined.
func (s *IndexingService) currentFingerprint(ctx context.Context, doc *domain.Document) string {
	if s.scanner == nil {
		return ""
	}
	info, err := s.scanner.Stat(ctx, doc.Path)
	if err != nil {
		logger.Debug("Cannot stat %s: %v", doc.Path, err)
		return ""
	}
	return info.Fingerprint
}

// index rebuilds the chunk set of doc. Every chunk is embedded before
// anything is written so a failure leaves the previous chunk set intact.
func (s *IndexingService) index(ctx context.Context, doc *domain.Document, fingerprint string) (int, error) {
	defer logger.Timed(fmt.Sprintf("index document %d", doc.ID))()
	logger.Info("Indexing %s", doc.Path)

	extraction := s.extractor.Extract(ctx, doc.Path)
	switch extraction.Status {
	case domain.ExtractionFailed:
		logger.Warn("Extraction failed for %s: %v", doc.Path, extraction.Err)
		return 0, nil
	case domain.ExtractionUnsupported:
		logger.Debug("Unsupported file type: %s", doc.Path)
		return 0, nil
	case domain.ExtractionEmpty:
		logger.Debug("No text in %s", doc.Path)
		return 0, s.clearChunks(ctx, doc)
	}
	if extraction.OCR {
		logger.Info("Used OCR for %s", doc.Path)
	}

	chunks, err := s.processor.Process(ctx, doc, extraction.Text)
	if err != nil {
		return 0, fmt.Errorf("chunk document %d: %w", doc.ID, err)
	}
	if len(chunks) == 0 {
		return 0, s.clearChunks(ctx, doc)
	}

	vectors := make([][]float32, 0, len(chunks))
	for i := range chunks {
		vec, err := s.embedder.Embed(ctx, chunks[i].Content)
		if err != nil {
			return 0, fmt.Errorf("%w: document %d chunk %d: %w", domain.ErrEmbeddingFailed, doc.ID, i, err)
		}
		if vec == nil {
			// Whitespace-only windows still occupy their index.
			vec = make([]float32, s.embedder.Dimensions())
		} else {
			vectors = append(vectors, vec)
		}
		chunks[i].Embedding = vec
	}

	if len(vectors) == 0 {
		// Nothing embeddable, e.g. only punctuation. Treat like empty text.
		logger.Debug("No embeddable text in %s", doc.Path)
		return 0, s.clearChunks(ctx, doc)
	}

	mean, err := domain.MeanVector(vectors)
	if err != nil {
		return 0, fmt.Errorf("%w: document %d: %w", domain.ErrEmbeddingFailed, doc.ID, err)
	}

	stamped := domain.StampFingerprint(fingerprint, s.signature())
	if err := s.docStore.ReplaceChunks(ctx, doc.ID, chunks, mean, stamped); err != nil {
		return 0, fmt.Errorf("store chunks of document %d: %w", doc.ID, err)
	}

	logger.Info("Indexed %s: %d chunks", doc.Path, len(chunks))
	return len(chunks), nil
}

// clearChunks drops a chunk set that no longer has any content behind it.
func (s *IndexingService) clearChunks(ctx context.Context, doc *domain.Document) error {
	if err := s.docStore.DeleteChunks(ctx, doc.ID); err != nil {
		return fmt.Errorf("clear chunks of document %d: %w", doc.ID, err)
	}
	return nil
}

// keyedMutex serialises work per document ID.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

// Lock acquires the lock for key and returns its release func.
func (k *keyedMutex) Lock(key int64) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[int64]*keyedLock)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
