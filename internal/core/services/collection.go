package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
	"github.com/custodia-labs/deepdocs/internal/core/ports/driven"
	"github.com/custodia-labs/deepdocs/internal/core/ports/driving"
	"github.com/custodia-labs/deepdocs/internal/logger"
)

// Ensure CollectionService implements the interface.
var _ driving.CollectionService = (*CollectionService)(nil)

// CollectionService manages user-defined groups of documents.
type CollectionService struct {
	collectionStore driven.CollectionStore
	docStore        driven.DocumentStore
	scanner         driven.FileScanner
}

// NewCollectionService creates a new collection service.
// The scanner is used by Export to skip members whose file is gone.
func NewCollectionService(
	collectionStore driven.CollectionStore,
	docStore driven.DocumentStore,
	scanner driven.FileScanner,
) *CollectionService {
	return &CollectionService{
		collectionStore: collectionStore,
		docStore:        docStore,
		scanner:         scanner,
	}
}

// Create validates and stores a new collection.
func (s *CollectionService) Create(ctx context.Context, c domain.Collection) (*domain.Collection, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return nil, err
	}

	id, err := s.collectionStore.CreateCollection(ctx, &c)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	logger.Info("Created collection %d (%s)", id, c.Name)
	return s.Get(ctx, id)
}

// Get retrieves a collection by ID.
func (s *CollectionService) Get(ctx context.Context, id int64) (*domain.Collection, error) {
	c, err := s.collectionStore.GetCollection(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get collection %d: %w", id, err)
	}
	return c, nil
}

// List returns all collections, newest first.
func (s *CollectionService) List(ctx context.Context) ([]domain.Collection, error) {
	return s.collectionStore.ListCollections(ctx)
}

// Update applies a partial update.
func (s *CollectionService) Update(
	ctx context.Context, id int64, update domain.CollectionUpdate,
) (*domain.Collection, error) {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: collection name is required", domain.ErrInvalidInput)
		}
		update.Name = &name
	}

	if err := s.collectionStore.UpdateCollection(ctx, id, update); err != nil {
		return nil, fmt.Errorf("update collection %d: %w", id, err)
	}
	return s.Get(ctx, id)
}

// Delete removes a collection. Its documents are kept.
func (s *CollectionService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.collectionStore.DeleteCollection(ctx, id); err != nil {
		return fmt.Errorf("delete collection %d: %w", id, err)
	}
	return nil
}

// AddDocuments adds documents to a collection. Existing members are ignored.
func (s *CollectionService) AddDocuments(ctx context.Context, collectionID int64, documentIDs []int64) error {
	if len(documentIDs) == 0 {
		return nil
	}
	if err := s.collectionStore.AddMembers(ctx, collectionID, documentIDs); err != nil {
		return fmt.Errorf("add documents to collection %d: %w", collectionID, err)
	}
	return nil
}

// RemoveDocument removes a document from a collection.
func (s *CollectionService) RemoveDocument(ctx context.Context, collectionID, documentID int64) error {
	if err := s.collectionStore.RemoveMember(ctx, collectionID, documentID); err != nil {
		return fmt.Errorf("remove document %d from collection %d: %w", documentID, collectionID, err)
	}
	return nil
}

// Documents returns the member documents of a collection.
func (s *CollectionService) Documents(ctx context.Context, collectionID int64) ([]domain.Document, error) {
	ids, err := s.collectionStore.MemberIDs(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("list members of collection %d: %w", collectionID, err)
	}
	return s.docStore.GetDocuments(ctx, ids)
}
