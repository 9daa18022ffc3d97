package driven

import (
	"context"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
)

// CollectionStore persists collections and their document memberships.
type CollectionStore interface {
	// CreateCollection stores a new collection and returns its ID.
	CreateCollection(ctx context.Context, c *domain.Collection) (int64, error)

	// GetCollection retrieves a collection by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetCollection(ctx context.Context, id int64) (*domain.Collection, error)

	// ListCollections returns all collections, newest first.
	ListCollections(ctx context.Context) ([]domain.Collection, error)

	// UpdateCollection applies the non-nil fields of update.
	UpdateCollection(ctx context.Context, id int64, update domain.CollectionUpdate) error

	// DeleteCollection removes a collection and its memberships.
	// Member documents are left untouched.
	DeleteCollection(ctx context.Context, id int64) error

	// AddMembers adds documents to a collection in one transaction.
	// Existing memberships are ignored.
	AddMembers(ctx context.Context, collectionID int64, documentIDs []int64) error

	// RemoveMember removes a single membership. Removing a missing
	// membership is not an error.
	RemoveMember(ctx context.Context, collectionID, documentID int64) error

	// MemberIDs returns the IDs of the documents in a collection, ascending.
	MemberIDs(ctx context.Context, collectionID int64) ([]int64, error)

	// DocumentCollections returns the collections containing a document,
	// newest first.
	DocumentCollections(ctx context.Context, documentID int64) ([]domain.Collection, error)
}
