package mcp

import (
	"github.com/custodia-labs/deepdocs/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// Search provides library and collection search.
	Search driving.SearchService

	// Document lists documents and reads their content.
	Document driving.DocumentService

	// Collection lists collections and their members.
	Collection driving.CollectionService

	// Indexing builds chunks for documents on request.
	Indexing driving.IndexingService
}

// Validate ensures all required ports are set.
// Tools whose port is missing report an error when called.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
