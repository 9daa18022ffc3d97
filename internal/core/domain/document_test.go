package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestDocument_Fields tests Document structure fields
func TestDocument_Fields(t *testing.T) {
	now := time.Now()

	doc := Document{
		ID:         42,
		Path:       "/home/user/notes/plan.md",
		Name:       "plan.md",
		Size:       1024,
		ModifiedAt: now,
		Category:   "work",
		Tags:       "q3,planning",
		AddedAt:    now,
	}

	assert.Equal(t, int64(42), doc.ID)
	assert.Equal(t, "/home/user/notes/plan.md", doc.Path)
	assert.Equal(t, "plan.md", doc.Name)
	assert.Equal(t, int64(1024), doc.Size)
	assert.Equal(t, now, doc.ModifiedAt)
	assert.False(t, doc.HasEmbedding())
}

func TestDocument_TagList(t *testing.T) {
	tests := []struct {
		name     string
		tags     string
		expected []string
	}{
		{"empty", "", nil},
		{"whitespace only", "   ", nil},
		{"single", "finance", []string{"finance"}},
		{"trims and skips blanks", " a, b ,,c ", []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Document{Tags: tt.tags}
			assert.Equal(t, tt.expected, doc.TagList())
		})
	}
}

func TestDocument_HasEmbedding(t *testing.T) {
	assert.False(t, Document{}.HasEmbedding())
	assert.False(t, Document{Embedding: []float32{}}.HasEmbedding())
	assert.True(t, Document{Embedding: []float32{0.1}}.HasEmbedding())
}

func TestDocumentMetadataUpdate_IsEmpty(t *testing.T) {
	category := "tax"
	assert.True(t, DocumentMetadataUpdate{}.IsEmpty())
	assert.False(t, DocumentMetadataUpdate{Category: &category}.IsEmpty())
}

func TestIndexStatus(t *testing.T) {
	assert.Equal(t, "not_indexed", IndexStatusNotIndexed.String())
	assert.Equal(t, "indexed", IndexStatusIndexed.String())
	assert.Equal(t, "stale", IndexStatusStale.String())
	assert.Equal(t, "unknown", IndexStatus(99).String())

	assert.True(t, IndexStatusNotIndexed.NeedsIndexing())
	assert.True(t, IndexStatusStale.NeedsIndexing())
	assert.False(t, IndexStatusIndexed.NeedsIndexing())
}

func TestCollection_Validate(t *testing.T) {
	assert.NoError(t, Collection{Name: "Taxes"}.Validate())
	assert.ErrorIs(t, Collection{}.Validate(), ErrInvalidInput)
	assert.ErrorIs(t, Collection{Name: "  "}.Validate(), ErrInvalidInput)
}
