package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query       string  `json:"query" jsonschema:"natural-language description of what to find"`
	Limit       int     `json:"limit,omitempty" jsonschema:"maximum number of results to return (default from settings)"`
	DocumentIDs []int64 `json:"document_ids,omitempty" jsonschema:"restrict the search to these document ids"`
}

// SearchCollectionInput is the input schema for the search_collection tool.
type SearchCollectionInput struct {
	CollectionID int64  `json:"collection_id" jsonschema:"id of the collection to search"`
	Query        string `json:"query" jsonschema:"natural-language description of what to find"`
	Limit        int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default from settings)"`
}

// SearchOutput is the output schema for the search tools.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	DocumentID int64   `json:"document_id"`
	Name       string  `json:"name"`
	Path       string  `json:"path"`
	Score      float64 `json:"score"`
	ChunkIndex int     `json:"chunk_index"`
	Snippet    string  `json:"snippet,omitempty"`
	Content    string  `json:"content,omitempty"`
}

// IndexDocumentInput is the input schema for the index_document tool.
type IndexDocumentInput struct {
	DocumentID int64 `json:"document_id" jsonschema:"id of the document to index"`
	Force      bool  `json:"force,omitempty" jsonschema:"rebuild chunks even when they are current"`
}

// IndexDocumentOutput is the output schema for the index_document tool.
type IndexDocumentOutput struct {
	DocumentID int64  `json:"document_id"`
	Chunks     int    `json:"chunks"`
	Status     string `json:"status"`
}

// ListCollectionsInput is the input schema for the list_collections tool.
type ListCollectionsInput struct{}

// ListCollectionsOutput is the output schema for the list_collections tool.
type ListCollectionsOutput struct {
	Collections []CollectionOutput `json:"collections"`
}

// CollectionOutput describes one collection.
type CollectionOutput struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Documents   int    `json:"documents"`
}

var errUnavailable = errors.New("not available on this server")

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Semantic search across indexed documents in the library",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_collection",
		Description: "Semantic search restricted to the documents of one collection",
	}, s.handleSearchCollection)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "index_document",
		Description: "Extract, chunk and embed a document so it becomes searchable",
	}, s.handleIndexDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_collections",
		Description: "List document collections, newest first",
	}, s.handleListCollections)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts := domain.SearchOptions{
		TopK:        input.Limit,
		DocumentIDs: input.DocumentIDs,
		Scoped:      len(input.DocumentIDs) > 0,
	}
	results, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, newSearchOutput(results), nil
}

// handleSearchCollection handles the search_collection tool invocation.
func (s *Server) handleSearchCollection(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchCollectionInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	results, err := s.ports.Search.SearchInCollection(ctx, input.CollectionID, input.Query, input.Limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, newSearchOutput(results), nil
}

// handleIndexDocument handles the index_document tool invocation.
func (s *Server) handleIndexDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IndexDocumentInput,
) (*mcp.CallToolResult, IndexDocumentOutput, error) {
	if s.ports.Indexing == nil {
		return nil, IndexDocumentOutput{}, fmt.Errorf("indexing %w", errUnavailable)
	}

	index := s.ports.Indexing.EnsureIndexed
	if input.Force {
		index = s.ports.Indexing.Reindex
	}
	n, err := index(ctx, input.DocumentID)
	if err != nil {
		return nil, IndexDocumentOutput{}, err
	}

	status, err := s.ports.Indexing.Status(ctx, input.DocumentID)
	if err != nil {
		return nil, IndexDocumentOutput{}, err
	}

	return nil, IndexDocumentOutput{
		DocumentID: input.DocumentID,
		Chunks:     n,
		Status:     status.String(),
	}, nil
}

// handleListCollections handles the list_collections tool invocation.
func (s *Server) handleListCollections(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListCollectionsInput,
) (*mcp.CallToolResult, ListCollectionsOutput, error) {
	if s.ports.Collection == nil {
		return nil, ListCollectionsOutput{}, fmt.Errorf("collections %w", errUnavailable)
	}

	collections, err := s.ports.Collection.List(ctx)
	if err != nil {
		return nil, ListCollectionsOutput{}, err
	}

	output := ListCollectionsOutput{Collections: make([]CollectionOutput, len(collections))}
	for i, c := range collections {
		docs, err := s.ports.Collection.Documents(ctx, c.ID)
		if err != nil {
			return nil, ListCollectionsOutput{}, fmt.Errorf("listing documents of collection %d: %w", c.ID, err)
		}
		output.Collections[i] = CollectionOutput{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Documents:   len(docs),
		}
	}
	return nil, output, nil
}

func newSearchOutput(results []domain.SearchResult) SearchOutput {
	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = SearchResultOutput{
			DocumentID: results[i].Document.ID,
			Name:       results[i].Document.Name,
			Path:       results[i].Document.Path,
			Score:      results[i].Score,
			ChunkIndex: results[i].Chunk.Index,
			Snippet:    results[i].Snippet,
			Content:    results[i].Chunk.Content,
		}
	}
	return output
}
