package domain

import (
	"strings"
	"time"
)

// Document represents a file on disk that has been added to the library.
// Its identity is the absolute file path; ID is the store-assigned key.
type Document struct {
	// ID is the store-assigned identifier.
	ID int64

	// Path is the unique absolute file path.
	Path string

	// Name is the display name (the file's base name by default).
	Name string

	// Size is the file size in bytes at the time it was added.
	Size int64

	// ModifiedAt is the file's last-modified time at the time it was added.
	ModifiedAt time.Time

	// Category is a free-form user label.
	Category string

	// Tags is a comma-separated tag list.
	Tags string

	// Embedding is the mean of the chunk embeddings.
	// A nil embedding marks the chunk set as stale.
	Embedding []float32

	// Fingerprint identifies the file state the chunks were built from.
	// Empty until the document has been indexed.
	Fingerprint string

	// AddedAt is when the document was first added.
	AddedAt time.Time
}

// TagList returns the trimmed, non-empty tags.
func (d Document) TagList() []string {
	if strings.TrimSpace(d.Tags) == "" {
		return nil
	}
	parts := strings.Split(d.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// HasEmbedding reports whether the whole-document embedding is present.
func (d Document) HasEmbedding() bool {
	return len(d.Embedding) > 0
}

// Chunk represents a searchable slice of a document's extracted text.
// Chunks are owned by their document and are only rewritten as a full set.
type Chunk struct {
	// DocumentID links to the parent Document.
	DocumentID int64

	// Index is the zero-based position within the document.
	// Indices for a document are contiguous from 0.
	Index int

	// Content is the raw text slice.
	Content string

	// Embedding is the vector representation for semantic search.
	Embedding []float32
}

// DocumentMetadataUpdate carries optional changes to user-editable fields.
// Nil fields are left untouched.
type DocumentMetadataUpdate struct {
	Category *string
	Tags     *string
}

// IsEmpty reports whether the update changes nothing.
func (u DocumentMetadataUpdate) IsEmpty() bool {
	return u.Category == nil && u.Tags == nil
}

// IndexStatus describes whether a document's chunk set matches its file.
type IndexStatus int

const (
	// IndexStatusNotIndexed means the document has no chunks.
	IndexStatusNotIndexed IndexStatus = iota

	// IndexStatusIndexed means chunks exist and match the current file.
	IndexStatusIndexed

	// IndexStatusStale means chunks exist but the file changed or the
	// document embedding is missing.
	IndexStatusStale
)

// String returns the string representation.
func (s IndexStatus) String() string {
	switch s {
	case IndexStatusNotIndexed:
		return "not_indexed"
	case IndexStatusIndexed:
		return "indexed"
	case IndexStatusStale:
		return "stale"
	default:
		return "unknown"
	}
}

// NeedsIndexing reports whether the chunk set must be (re)built.
func (s IndexStatus) NeedsIndexing() bool {
	return s != IndexStatusIndexed
}
