package sqlite

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
)

func TestDocumentStore_InsertAndGet(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	modified := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	id, inserted, err := docs.InsertDocument(ctx, &domain.Document{
		Path:        "/docs/report.pdf",
		Name:        "report.pdf",
		Size:        2048,
		ModifiedAt:  modified,
		Category:    "work",
		Tags:        "q1,finance",
		Fingerprint: "abc",
	})
	require.NoError(t, err)
	assert.True(t, inserted)

	doc, err := docs.GetDocument(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID)
	assert.Equal(t, "report.pdf", doc.Name)
	assert.Equal(t, int64(2048), doc.Size)
	assert.True(t, modified.Equal(doc.ModifiedAt))
	assert.Equal(t, "work", doc.Category)
	assert.Equal(t, []string{"q1", "finance"}, doc.TagList())
	assert.Equal(t, "abc", doc.Fingerprint)
	assert.False(t, doc.AddedAt.IsZero())
	assert.Nil(t, doc.Embedding)

	byPath, err := docs.GetDocumentByPath(ctx, "/docs/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, id, byPath.ID)
}

func TestDocumentStore_InsertDocument_ExistingPathIsNoOp(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	first := createTestDocument(t, store, "/docs/a.txt")
	id, inserted, err := docs.InsertDocument(ctx, &domain.Document{Path: "/docs/a.txt", Name: "renamed"})
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, first, id)

	doc, err := docs.GetDocument(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", doc.Name)

	second := createTestDocument(t, store, "/docs/b.txt")
	assert.Greater(t, second, first)
}

func TestDocumentStore_InsertDocument_RequiresPath(t *testing.T) {
	store := setupTestStore(t)
	_, _, err := store.DocumentStore().InsertDocument(context.Background(), &domain.Document{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDocumentStore_NotFound(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	_, err := docs.GetDocument(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = docs.GetDocumentByPath(ctx, "/nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = docs.SetDocumentEmbedding(ctx, 99, []float32{1})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = docs.ReplaceChunks(ctx, 99, nil, nil, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_ListAndGetDocuments(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()
	a := createTestDocument(t, store, "/a")
	b := createTestDocument(t, store, "/b")

	all, err := docs.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, a, all[0].ID)

	some, err := docs.GetDocuments(ctx, []int64{b, 42, a})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, a, some[0].ID)
	assert.Equal(t, b, some[1].ID)

	none, err := docs.GetDocuments(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDocumentStore_UpdateDocumentMetadata(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()
	id := createTestDocument(t, store, "/a")

	category := "finance"
	require.NoError(t, docs.UpdateDocumentMetadata(ctx, id, domain.DocumentMetadataUpdate{Category: &category}))

	tags := "tax,2024"
	require.NoError(t, docs.UpdateDocumentMetadata(ctx, id, domain.DocumentMetadataUpdate{Tags: &tags}))

	doc, err := docs.GetDocument(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "finance", doc.Category)
	assert.Equal(t, "tax,2024", doc.Tags)

	empty := ""
	require.NoError(t, docs.UpdateDocumentMetadata(ctx, id, domain.DocumentMetadataUpdate{Category: &empty}))
	doc, err = docs.GetDocument(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, doc.Category)
	assert.Equal(t, "tax,2024", doc.Tags)

	err = docs.UpdateDocumentMetadata(ctx, 999, domain.DocumentMetadataUpdate{Tags: &tags})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_Chunks(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()
	a := createTestDocument(t, store, "/a")
	b := createTestDocument(t, store, "/b")

	require.NoError(t, docs.InsertChunk(ctx, domain.Chunk{DocumentID: b, Index: 0, Content: "b0", Embedding: []float32{2}}))
	require.NoError(t, docs.InsertChunk(ctx, domain.Chunk{DocumentID: b, Index: 1, Content: "b1", Embedding: []float32{1}}))
	require.NoError(t, docs.InsertChunk(ctx, domain.Chunk{DocumentID: a, Index: 0, Content: "a0", Embedding: []float32{3}}))

	err := docs.InsertChunk(ctx, domain.Chunk{DocumentID: a, Index: 0, Content: "dup"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Indices stay contiguous: no gaps, no out-of-order appends.
	for _, idx := range []int{7, -1, 2} {
		err = docs.InsertChunk(ctx, domain.Chunk{DocumentID: a, Index: idx, Content: "gap"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, idx)
	}
	kept, err := docs.CountChunks(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, 1, kept)

	err = docs.InsertChunk(ctx, domain.Chunk{DocumentID: 77, Index: 0})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	all, err := docs.ListChunks(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a0", all[0].Content)
	assert.Equal(t, "b0", all[1].Content)
	assert.Equal(t, "b1", all[2].Content)
	assert.Equal(t, []float32{2}, all[1].Embedding)

	scoped, err := docs.ListChunks(ctx, []int64{b})
	require.NoError(t, err)
	assert.Len(t, scoped, 2)

	none, err := docs.ListChunks(ctx, []int64{})
	require.NoError(t, err)
	assert.Empty(t, none)

	count, err := docs.CountChunks(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestDocumentStore_LargeScope(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()
	a := createTestDocument(t, store, "/a")
	b := createTestDocument(t, store, "/b")
	require.NoError(t, docs.ReplaceChunks(ctx, a,
		[]domain.Chunk{{Index: 0, Content: "a0"}, {Index: 1, Content: "a1"}}, []float32{1}, "fp"))
	require.NoError(t, docs.ReplaceChunks(ctx, b,
		[]domain.Chunk{{Index: 0, Content: "b0"}}, []float32{1}, "fp"))

	// More ids than SQLite accepts as variables in one statement.
	ids := make([]int64, 0, 40_000)
	for i := range int64(40_000) {
		ids = append(ids, 1_000_000-i)
	}
	ids = append(ids, b, a, b)

	chunks, err := docs.ListChunks(ctx, ids)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "a0", chunks[0].Content)
	assert.Equal(t, "a1", chunks[1].Content)
	assert.Equal(t, "b0", chunks[2].Content)

	found, err := docs.GetDocuments(ctx, ids)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, a, found[0].ID)

	require.NoError(t, docs.DeleteDocuments(ctx, ids))
	remaining, err := docs.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestDocumentStore_ReplaceChunks(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()
	id := createTestDocument(t, store, "/a")

	first := []domain.Chunk{
		{Index: 0, Content: "one", Embedding: []float32{1, 0}},
		{Index: 1, Content: "two", Embedding: []float32{0, 1}},
		{Index: 2, Content: "three", Embedding: []float32{1, 1}},
	}
	require.NoError(t, docs.ReplaceChunks(ctx, id, first, []float32{0.5, 0.5}, "fp1"))

	second := []domain.Chunk{{Index: 0, Content: "only", Embedding: []float32{1, 0}}}
	require.NoError(t, docs.ReplaceChunks(ctx, id, second, []float32{1, 0}, "fp2"))

	chunks, err := docs.ListChunks(ctx, []int64{id})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "only", chunks[0].Content)
	assert.Equal(t, id, chunks[0].DocumentID)

	doc, err := docs.GetDocument(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, doc.Embedding)
	assert.Equal(t, "fp2", doc.Fingerprint)
}

func TestDocumentStore_ReplaceChunks_RollsBack(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()
	id := createTestDocument(t, store, "/a")

	require.NoError(t, docs.ReplaceChunks(ctx, id,
		[]domain.Chunk{{Index: 0, Content: "kept", Embedding: []float32{1}}}, []float32{1}, "fp1"))

	// Duplicate indexes violate the primary key half-way through.
	broken := []domain.Chunk{
		{Index: 0, Content: "new"},
		{Index: 0, Content: "clash"},
	}
	err := docs.ReplaceChunks(ctx, id, broken, []float32{2}, "fp2")
	require.Error(t, err)

	chunks, err := docs.ListChunks(ctx, []int64{id})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "kept", chunks[0].Content)

	doc, err := docs.GetDocument(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "fp1", doc.Fingerprint)
}

func TestDocumentStore_DeleteChunks(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()
	id := createTestDocument(t, store, "/a")

	require.NoError(t, docs.ReplaceChunks(ctx, id,
		[]domain.Chunk{{Index: 0, Content: "x", Embedding: []float32{1}}}, []float32{1}, "fp"))
	require.NoError(t, docs.DeleteChunks(ctx, id))

	count, err := docs.CountChunks(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, count)

	doc, err := docs.GetDocument(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, doc.Embedding)
	assert.Empty(t, doc.Fingerprint)
}

func TestDocumentStore_SetDocumentEmbedding(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()
	id := createTestDocument(t, store, "/a")

	require.NoError(t, docs.SetDocumentEmbedding(ctx, id, []float32{0.25, -0.5}))
	doc, err := docs.GetDocument(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, -0.5}, doc.Embedding)
	assert.True(t, doc.HasEmbedding())
}

func TestDocumentStore_DeleteDocuments_Cascades(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	cols := store.CollectionStore()
	ctx := context.Background()

	a := createTestDocument(t, store, "/a")
	b := createTestDocument(t, store, "/b")
	require.NoError(t, docs.ReplaceChunks(ctx, a, []domain.Chunk{{Index: 0, Content: "a"}}, nil, ""))
	require.NoError(t, docs.ReplaceChunks(ctx, b, []domain.Chunk{{Index: 0, Content: "b"}}, nil, ""))

	colID, err := cols.CreateCollection(ctx, &domain.Collection{Name: "Both"})
	require.NoError(t, err)
	require.NoError(t, cols.AddMembers(ctx, colID, []int64{a, b}))

	require.NoError(t, docs.DeleteDocuments(ctx, []int64{a, 404}))
	require.NoError(t, docs.DeleteDocuments(ctx, nil))

	_, err = docs.GetDocument(ctx, a)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	chunks, err := docs.ListChunks(ctx, nil)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, b, chunks[0].DocumentID)

	members, err := cols.MemberIDs(ctx, colID)
	require.NoError(t, err)
	assert.Equal(t, []int64{b}, members)
}

func TestDocumentStore_ConcurrentReplace(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()
	id := createTestDocument(t, store, "/a")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			chunks := []domain.Chunk{
				{Index: 0, Content: "first"},
				{Index: 1, Content: "second"},
			}
			assert.NoError(t, docs.ReplaceChunks(ctx, id, chunks, []float32{float32(n)}, "fp"))
		}(i)
	}
	wg.Wait()

	count, err := docs.CountChunks(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
