package driving

import (
	"context"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
)

// SearchService provides semantic search to external actors.
type SearchService interface {
	// Search ranks documents by the similarity of their best chunk to query.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// SearchInCollection runs Search over the members of a collection.
	// Returns domain.ErrNotFound for an unknown collection.
	SearchInCollection(ctx context.Context, collectionID int64, query string, topK int) ([]domain.SearchResult, error)
}
