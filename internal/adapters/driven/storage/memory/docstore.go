package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
	"github.com/custodia-labs/deepdocs/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	lib *library
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	docs, _ := NewStores()
	return docs
}

// ListDocuments returns all documents ordered by ID.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.lib.mu.RLock()
	defer s.lib.mu.RUnlock()
	return s.sortedDocuments(nil), nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id int64) (*domain.Document, error) {
	s.lib.mu.RLock()
	defer s.lib.mu.RUnlock()
	doc, ok := s.lib.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc = cloneDocument(doc)
	return &doc, nil
}

// GetDocumentByPath retrieves a document by its unique path.
func (s *DocumentStore) GetDocumentByPath(ctx context.Context, path string) (*domain.Document, error) {
	s.lib.mu.RLock()
	id, ok := s.lib.paths[path]
	s.lib.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.GetDocument(ctx, id)
}

// GetDocuments retrieves the documents with the given IDs.
func (s *DocumentStore) GetDocuments(_ context.Context, ids []int64) ([]domain.Document, error) {
	s.lib.mu.RLock()
	defer s.lib.mu.RUnlock()
	if len(ids) == 0 {
		return []domain.Document{}, nil
	}
	return s.sortedDocuments(ids), nil
}

// InsertDocument stores a new document. Existing paths are left untouched.
func (s *DocumentStore) InsertDocument(_ context.Context, doc *domain.Document) (int64, bool, error) {
	if doc == nil || doc.Path == "" {
		return 0, false, fmt.Errorf("%w: document path is required", domain.ErrInvalidInput)
	}

	s.lib.mu.Lock()
	defer s.lib.mu.Unlock()

	if id, ok := s.lib.paths[doc.Path]; ok {
		return id, false, nil
	}

	s.lib.nextDocumentID++
	stored := cloneDocument(*doc)
	stored.ID = s.lib.nextDocumentID
	if stored.AddedAt.IsZero() {
		stored.AddedAt = s.lib.now()
	}
	s.lib.documents[stored.ID] = stored
	s.lib.paths[stored.Path] = stored.ID
	return stored.ID, true, nil
}

// UpdateDocumentMetadata applies the non-nil fields of update.
func (s *DocumentStore) UpdateDocumentMetadata(_ context.Context, id int64, update domain.DocumentMetadataUpdate) error {
	s.lib.mu.Lock()
	defer s.lib.mu.Unlock()
	doc, ok := s.lib.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	if update.Category != nil {
		doc.Category = *update.Category
	}
	if update.Tags != nil {
		doc.Tags = *update.Tags
	}
	s.lib.documents[id] = doc
	return nil
}

// DeleteDocuments removes documents with their chunks and memberships.
func (s *DocumentStore) DeleteDocuments(_ context.Context, ids []int64) error {
	s.lib.mu.Lock()
	defer s.lib.mu.Unlock()
	for _, id := range ids {
		doc, ok := s.lib.documents[id]
		if !ok {
			continue
		}
		delete(s.lib.paths, doc.Path)
		delete(s.lib.documents, id)
		delete(s.lib.chunks, id)
		for _, members := range s.lib.members {
			delete(members, id)
		}
	}
	return nil
}

// ListChunks returns chunks ordered by (document_id, chunk_index).
func (s *DocumentStore) ListChunks(_ context.Context, ids []int64) ([]domain.Chunk, error) {
	s.lib.mu.RLock()
	defer s.lib.mu.RUnlock()

	var docIDs []int64
	if ids == nil {
		for id := range s.lib.chunks {
			docIDs = append(docIDs, id)
		}
	} else {
		docIDs = slices.Clone(ids)
	}
	slices.Sort(docIDs)
	docIDs = slices.Compact(docIDs)

	chunks := make([]domain.Chunk, 0)
	for _, id := range docIDs {
		for _, c := range s.lib.chunks[id] {
			chunks = append(chunks, cloneChunk(c))
		}
	}
	return chunks, nil
}

// CountChunks returns the number of chunks stored for a document.
func (s *DocumentStore) CountChunks(_ context.Context, documentID int64) (int, error) {
	s.lib.mu.RLock()
	defer s.lib.mu.RUnlock()
	return len(s.lib.chunks[documentID]), nil
}

// InsertChunk appends a single chunk. The index must be the next free one.
func (s *DocumentStore) InsertChunk(_ context.Context, chunk domain.Chunk) error {
	s.lib.mu.Lock()
	defer s.lib.mu.Unlock()
	if _, ok := s.lib.documents[chunk.DocumentID]; !ok {
		return domain.ErrNotFound
	}
	existing := s.lib.chunks[chunk.DocumentID]
	if chunk.Index != len(existing) {
		return fmt.Errorf("%w: chunk index %d of document %d, want %d",
			domain.ErrInvalidInput, chunk.Index, chunk.DocumentID, len(existing))
	}
	s.lib.chunks[chunk.DocumentID] = append(existing, cloneChunk(chunk))
	return nil
}

// ReplaceChunks swaps the chunk set of a document in one step.
func (s *DocumentStore) ReplaceChunks(
	_ context.Context, documentID int64, chunks []domain.Chunk, embedding []float32, fingerprint string,
) error {
	s.lib.mu.Lock()
	defer s.lib.mu.Unlock()
	doc, ok := s.lib.documents[documentID]
	if !ok {
		return domain.ErrNotFound
	}

	replaced := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		c.DocumentID = documentID
		replaced[i] = cloneChunk(c)
	}
	slices.SortFunc(replaced, func(a, b domain.Chunk) int { return a.Index - b.Index })

	if len(replaced) == 0 {
		delete(s.lib.chunks, documentID)
	} else {
		s.lib.chunks[documentID] = replaced
	}
	doc.Embedding = cloneVector(embedding)
	doc.Fingerprint = fingerprint
	s.lib.documents[documentID] = doc
	return nil
}

// DeleteChunks removes all chunks of a document and clears its embedding.
func (s *DocumentStore) DeleteChunks(_ context.Context, documentID int64) error {
	s.lib.mu.Lock()
	defer s.lib.mu.Unlock()
	delete(s.lib.chunks, documentID)
	if doc, ok := s.lib.documents[documentID]; ok {
		doc.Embedding = nil
		doc.Fingerprint = ""
		s.lib.documents[documentID] = doc
	}
	return nil
}

// SetDocumentEmbedding stores the whole-document embedding.
func (s *DocumentStore) SetDocumentEmbedding(_ context.Context, id int64, embedding []float32) error {
	s.lib.mu.Lock()
	defer s.lib.mu.Unlock()
	doc, ok := s.lib.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Embedding = cloneVector(embedding)
	s.lib.documents[id] = doc
	return nil
}

// sortedDocuments returns copies of the selected documents ordered by ID.
// A nil ids slice selects every document. Callers hold the lock.
func (s *DocumentStore) sortedDocuments(ids []int64) []domain.Document {
	docs := make([]domain.Document, 0, len(s.lib.documents))
	if ids == nil {
		for _, d := range s.lib.documents {
			docs = append(docs, cloneDocument(d))
		}
	} else {
		seen := make(map[int64]bool, len(ids))
		for _, id := range ids {
			if d, ok := s.lib.documents[id]; ok && !seen[id] {
				seen[id] = true
				docs = append(docs, cloneDocument(d))
			}
		}
	}
	slices.SortFunc(docs, func(a, b domain.Document) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return docs
}
