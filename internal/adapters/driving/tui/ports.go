// Package tui provides an interactive terminal user interface for deepdocs.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/deepdocs/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
type Ports struct {
	// Search answers natural-language queries.
	Search driving.SearchService

	// Document manages the library.
	Document driving.DocumentService

	// Collection manages user-defined document groups.
	Collection driving.CollectionService

	// Indexing extracts, chunks and embeds documents.
	Indexing driving.IndexingService

	// Settings manages application settings.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	search driving.SearchService,
	document driving.DocumentService,
	collection driving.CollectionService,
	indexing driving.IndexingService,
) *Ports {
	return &Ports{
		Search:     search,
		Document:   document,
		Collection: collection,
		Indexing:   indexing,
	}
}

// Validate ensures the required ports are set.
// Collections, indexing and settings are optional; their views report
// the missing service instead.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	return nil
}
