package search

import "errors"

// Error definitions for the search view.
var (
	// ErrNoSearchService indicates that no search service was provided.
	ErrNoSearchService = errors.New("search service is required")

	// ErrNoDocumentService indicates that documents cannot be opened.
	ErrNoDocumentService = errors.New("document service is required")
)
