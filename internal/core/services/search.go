package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
	"github.com/custodia-labs/deepdocs/internal/core/ports/driven"
	"github.com/custodia-labs/deepdocs/internal/core/ports/driving"
	"github.com/custodia-labs/deepdocs/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// scoredChunk is the best chunk found so far for one document.
type scoredChunk struct {
	chunk domain.Chunk
	score float64
}

// SearchService ranks documents by semantic similarity.
// Every search re-reads chunks from the store; no index is kept in memory.
type SearchService struct {
	docStore        driven.DocumentStore
	collectionStore driven.CollectionStore
	embedder        driven.EmbeddingService
	defaultTopK     int
}

// NewSearchService creates a new search service.
// The collectionStore is only needed for SearchInCollection.
func NewSearchService(
	docStore driven.DocumentStore,
	collectionStore driven.CollectionStore,
	embedder driven.EmbeddingService,
) *SearchService {
	return &SearchService{
		docStore:        docStore,
		collectionStore: collectionStore,
		embedder:        embedder,
		defaultTopK:     domain.DefaultTopK,
	}
}

// SetDefaultTopK sets the result limit used when a request does not set one.
func (s *SearchService) SetDefaultTopK(k int) {
	if k > 0 {
		s.defaultTopK = k
	}
}

// Search ranks documents by the similarity of their best chunk to query.
//
// Chunks are scanned in (document_id, chunk_index) order and a document's
// best chunk is only replaced by a strictly higher score, so the earliest
// chunk wins ties. Documents with equal scores keep ascending ID order.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}

	limit := opts.TopK
	if limit <= 0 {
		limit = s.defaultTopK
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if queryVec == nil {
		return []domain.SearchResult{}, nil
	}

	var ids []int64
	if opts.Scoped {
		if len(opts.DocumentIDs) == 0 {
			logger.Debug("Scoped search with no documents")
			return []domain.SearchResult{}, nil
		}
		ids = opts.DocumentIDs
	}

	chunks, err := s.docStore.ListChunks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	logger.Debug("Scoring %d candidate chunks", len(chunks))

	best := rankBestChunks(queryVec, chunks)
	if len(best) > limit {
		best = best[:limit]
	}

	results, err := s.hydrate(ctx, best)
	if err != nil {
		return nil, err
	}

	logger.Info("Search returned %d results", len(results))
	return results, nil
}

// SearchInCollection runs Search over the members of a collection.
func (s *SearchService) SearchInCollection(
	ctx context.Context, collectionID int64, query string, topK int,
) ([]domain.SearchResult, error) {
	if s.collectionStore == nil {
		return nil, fmt.Errorf("%w: collections are not available", domain.ErrInvalidConfiguration)
	}

	if _, err := s.collectionStore.GetCollection(ctx, collectionID); err != nil {
		return nil, fmt.Errorf("get collection %d: %w", collectionID, err)
	}

	ids, err := s.collectionStore.MemberIDs(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("list members of collection %d: %w", collectionID, err)
	}
	logger.Debug("Collection %d has %d documents", collectionID, len(ids))

	return s.Search(ctx, query, domain.SearchOptions{
		TopK:        topK,
		Scoped:      true,
		DocumentIDs: ids,
	})
}

// rankBestChunks keeps the highest scoring chunk per document and sorts
// the survivors by descending score.
func rankBestChunks(query []float32, chunks []domain.Chunk) []scoredChunk {
	index := make(map[int64]int)
	best := make([]scoredChunk, 0)

	for _, c := range chunks {
		score := domain.CosineSimilarity(query, c.Embedding)
		i, seen := index[c.DocumentID]
		if !seen {
			index[c.DocumentID] = len(best)
			best = append(best, scoredChunk{chunk: c, score: score})
			continue
		}
		if score > best[i].score {
			best[i] = scoredChunk{chunk: c, score: score}
		}
	}

	sort.SliceStable(best, func(i, j int) bool {
		return best[i].score > best[j].score
	})
	return best
}

// hydrate attaches documents and snippets to the ranked chunks.
// Chunks whose document disappeared in the meantime are dropped.
func (s *SearchService) hydrate(ctx context.Context, ranked []scoredChunk) ([]domain.SearchResult, error) {
	results := make([]domain.SearchResult, 0, len(ranked))
	if len(ranked) == 0 {
		return results, nil
	}

	ids := make([]int64, len(ranked))
	for i, r := range ranked {
		ids[i] = r.chunk.DocumentID
	}

	docs, err := s.docStore.GetDocuments(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load result documents: %w", err)
	}
	byID := make(map[int64]domain.Document, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}

	for _, r := range ranked {
		doc, ok := byID[r.chunk.DocumentID]
		if !ok {
			continue
		}
		results = append(results, domain.SearchResult{
			Document: doc,
			Chunk:    r.chunk,
			Score:    r.score,
			Snippet:  domain.Snippet(r.chunk.Content, domain.SnippetLength),
		})
	}
	return results, nil
}
