package memory

import (
	"context"
	"slices"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
	"github.com/custodia-labs/deepdocs/internal/core/ports/driven"
)

// Ensure CollectionStore implements the interface.
var _ driven.CollectionStore = (*CollectionStore)(nil)

// CollectionStore is an in-memory implementation of driven.CollectionStore.
type CollectionStore struct {
	lib *library
}

// CreateCollection stores a new collection and returns its ID.
func (s *CollectionStore) CreateCollection(_ context.Context, c *domain.Collection) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}

	s.lib.mu.Lock()
	defer s.lib.mu.Unlock()

	s.lib.nextCollectionID++
	stored := *c
	stored.ID = s.lib.nextCollectionID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = s.lib.now()
	}
	s.lib.collections[stored.ID] = stored
	return stored.ID, nil
}

// GetCollection retrieves a collection by ID.
func (s *CollectionStore) GetCollection(_ context.Context, id int64) (*domain.Collection, error) {
	s.lib.mu.RLock()
	defer s.lib.mu.RUnlock()
	c, ok := s.lib.collections[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

// ListCollections returns all collections, newest first.
func (s *CollectionStore) ListCollections(_ context.Context) ([]domain.Collection, error) {
	s.lib.mu.RLock()
	defer s.lib.mu.RUnlock()

	out := make([]domain.Collection, 0, len(s.lib.collections))
	for _, c := range s.lib.collections {
		out = append(out, c)
	}
	sortNewestFirst(out)
	return out, nil
}

// DocumentCollections returns the collections containing a document.
func (s *CollectionStore) DocumentCollections(_ context.Context, documentID int64) ([]domain.Collection, error) {
	s.lib.mu.RLock()
	defer s.lib.mu.RUnlock()

	out := make([]domain.Collection, 0)
	for id, members := range s.lib.members {
		if _, ok := members[documentID]; ok {
			out = append(out, s.lib.collections[id])
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// UpdateCollection applies the non-nil fields of update.
func (s *CollectionStore) UpdateCollection(_ context.Context, id int64, update domain.CollectionUpdate) error {
	s.lib.mu.Lock()
	defer s.lib.mu.Unlock()
	c, ok := s.lib.collections[id]
	if !ok {
		return domain.ErrNotFound
	}
	if update.Name != nil {
		c.Name = *update.Name
	}
	if update.Description != nil {
		c.Description = *update.Description
	}
	if update.Color != nil {
		c.Color = *update.Color
	}
	if err := c.Validate(); err != nil {
		return err
	}
	s.lib.collections[id] = c
	return nil
}

// DeleteCollection removes a collection and its memberships.
func (s *CollectionStore) DeleteCollection(_ context.Context, id int64) error {
	s.lib.mu.Lock()
	defer s.lib.mu.Unlock()
	delete(s.lib.collections, id)
	delete(s.lib.members, id)
	return nil
}

// AddMembers adds documents to a collection. All IDs are checked before
// any membership is written.
func (s *CollectionStore) AddMembers(_ context.Context, collectionID int64, documentIDs []int64) error {
	s.lib.mu.Lock()
	defer s.lib.mu.Unlock()

	if _, ok := s.lib.collections[collectionID]; !ok {
		return domain.ErrNotFound
	}
	for _, id := range documentIDs {
		if _, ok := s.lib.documents[id]; !ok {
			return domain.ErrNotFound
		}
	}

	members, ok := s.lib.members[collectionID]
	if !ok {
		members = make(map[int64]struct{})
		s.lib.members[collectionID] = members
	}
	for _, id := range documentIDs {
		members[id] = struct{}{}
	}
	return nil
}

// RemoveMember removes a single membership.
func (s *CollectionStore) RemoveMember(_ context.Context, collectionID, documentID int64) error {
	s.lib.mu.Lock()
	defer s.lib.mu.Unlock()
	if members, ok := s.lib.members[collectionID]; ok {
		delete(members, documentID)
	}
	return nil
}

// MemberIDs returns the IDs of the documents in a collection, ascending.
func (s *CollectionStore) MemberIDs(_ context.Context, collectionID int64) ([]int64, error) {
	s.lib.mu.RLock()
	defer s.lib.mu.RUnlock()

	if _, ok := s.lib.collections[collectionID]; !ok {
		return nil, domain.ErrNotFound
	}
	ids := make([]int64, 0, len(s.lib.members[collectionID]))
	for id := range s.lib.members[collectionID] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func sortNewestFirst(cols []domain.Collection) {
	slices.SortFunc(cols, func(a, b domain.Collection) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})
}
