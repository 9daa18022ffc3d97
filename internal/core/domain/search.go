package domain

// DefaultTopK is the number of results returned when none is requested.
const DefaultTopK = 5

// SnippetLength is the maximum snippet length in characters.
const SnippetLength = 200

// SearchOptions configures a search query.
type SearchOptions struct {
	// TopK is the maximum number of documents returned.
	// Values <= 0 use DefaultTopK.
	TopK int

	// Scoped restricts candidates to DocumentIDs.
	// A scoped search with no ids has no candidates.
	Scoped bool

	// DocumentIDs lists the candidate documents when Scoped is set.
	DocumentIDs []int64
}

// Limit returns the effective result limit.
func (o SearchOptions) Limit() int {
	if o.TopK <= 0 {
		return DefaultTopK
	}
	return o.TopK
}

// SearchResult represents a single ranked document hit.
type SearchResult struct {
	// Document is the matched document.
	Document Document

	// Chunk is the best matching chunk of the document.
	Chunk Chunk

	// Score is the cosine similarity of the best chunk.
	Score float64

	// Snippet is the chunk text truncated for display.
	Snippet string
}
