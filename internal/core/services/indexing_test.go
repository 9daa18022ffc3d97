package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deepdocs/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/deepdocs/internal/core/domain"
	"github.com/custodia-labs/deepdocs/internal/postprocessors/chunker"
)

type indexingFixture struct {
	service   *IndexingService
	docs      *memory.DocumentStore
	extractor *mockExtractor
	embedder  *mockEmbeddingService
	scanner   *mockScanner
}

func newIndexingFixture(t *testing.T) *indexingFixture {
	t.Helper()
	docs, _ := memory.NewStores()
	processor, err := chunker.New(chunker.WithChunkSize(5), chunker.WithOverlap(2))
	require.NoError(t, err)

	f := &indexingFixture{
		docs:      docs,
		extractor: newMockExtractor(),
		embedder:  newMockEmbedder(nil),
		scanner:   newMockScanner(),
	}
	f.service = NewIndexingService(docs, f.extractor, processor, f.embedder, f.scanner)
	return f
}

func (f *indexingFixture) addDocument(t *testing.T, path, text string) int64 {
	t.Helper()
	id, _, err := f.docs.InsertDocument(context.Background(), &domain.Document{Path: path, Name: path})
	require.NoError(t, err)
	f.scanner.addFile(path, int64(len(text)))
	f.extractor.set(path, text)
	return id
}

func TestIndexingService_EnsureIndexed(t *testing.T) {
	f := newIndexingFixture(t)
	ctx := context.Background()
	id := f.addDocument(t, "/docs/a.txt", "AAAAABBBBBCCCCC")

	n, err := f.service.EnsureIndexed(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	chunks, err := f.docs.ListChunks(ctx, []int64{id})
	require.NoError(t, err)
	require.Len(t, chunks, 5)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.Len(t, c.Embedding, 3)
	}
	assert.Equal(t, "AABBB", chunks[1].Content)

	doc, err := f.docs.GetDocument(ctx, id)
	require.NoError(t, err)
	require.Len(t, doc.Embedding, 3)
	// Mean of the first bytes A, A, B, B, C.
	assert.InDelta(t, 65.8, doc.Embedding[0], 1e-4)
	assert.InDelta(t, 1.0, doc.Embedding[1], 1e-6)
	file, sig, ok := domain.SplitFingerprint(doc.Fingerprint)
	require.True(t, ok)
	assert.Equal(t, "/docs/a.txt:15", file)
	assert.Equal(t, domain.IndexSignature{Model: "mock", Dimensions: 3, ChunkSize: 5, Overlap: 2}, sig)
}

func TestIndexingService_EnsureIndexed_SecondCallIsNoOp(t *testing.T) {
	f := newIndexingFixture(t)
	ctx := context.Background()
	id := f.addDocument(t, "/docs/a.txt", "AAAAABBBBBCCCCC")

	_, err := f.service.EnsureIndexed(ctx, id)
	require.NoError(t, err)
	calls := f.embedder.Calls()

	n, err := f.service.EnsureIndexed(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, calls, f.embedder.Calls())
	assert.Equal(t, 1, f.extractor.calls["/docs/a.txt"])
}

func TestIndexingService_EnsureIndexed_SymbolsOnly(t *testing.T) {
	f := newIndexingFixture(t)
	ctx := context.Background()
	id := f.addDocument(t, "/docs/rule.txt", "----- ***** ===== -----")
	f.embedder.wordsOnly = true

	for range 3 {
		n, err := f.service.EnsureIndexed(ctx, id)
		require.NoError(t, err)
		assert.Zero(t, n)
	}

	count, err := f.docs.CountChunks(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, count)

	status, err := f.service.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.IndexStatusNotIndexed, status)
}

func TestIndexingService_SignatureChangeMakesStale(t *testing.T) {
	f := newIndexingFixture(t)
	ctx := context.Background()
	id := f.addDocument(t, "/docs/a.txt", "AAAAABBBBBCCCCC")

	_, err := f.service.EnsureIndexed(ctx, id)
	require.NoError(t, err)

	f.embedder.switchModel("mock-large", 4)

	status, err := f.service.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.IndexStatusStale, status)

	n, err := f.service.EnsureIndexed(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	doc, err := f.docs.GetDocument(ctx, id)
	require.NoError(t, err)
	assert.Len(t, doc.Embedding, 4)

	status, err = f.service.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.IndexStatusIndexed, status)
}

func TestIndexingService_ChunkLayoutChangeMakesStale(t *testing.T) {
	f := newIndexingFixture(t)
	ctx := context.Background()
	id := f.addDocument(t, "/docs/a.txt", "AAAAABBBBBCCCCC")

	_, err := f.service.EnsureIndexed(ctx, id)
	require.NoError(t, err)

	wider, err := chunker.New(chunker.WithChunkSize(8), chunker.WithOverlap(2))
	require.NoError(t, err)
	service := NewIndexingService(f.docs, f.extractor, wider, f.embedder, f.scanner)

	status, err := service.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.IndexStatusStale, status)
}

func TestIndexingService_UnsignedFingerprintIsStale(t *testing.T) {
	f := newIndexingFixture(t)
	ctx := context.Background()
	id := f.addDocument(t, "/docs/a.txt", "AAAAABBBBBCCCCC")

	chunks := []domain.Chunk{{Index: 0, Content: "AAAAA", Embedding: []float32{1, 0, 0}}}
	require.NoError(t, f.docs.ReplaceChunks(ctx, id, chunks, []float32{1, 0, 0}, "/docs/a.txt:15"))

	status, err := f.service.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.IndexStatusStale, status)
}

func TestIndexingService_EnsureIndexed_NoContent(t *testing.T) {
	f := newIndexingFixture(t)
	ctx := context.Background()
	id := f.addDocument(t, "/docs/blank.txt", "   \n ")

	n, err := f.service.EnsureIndexed(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, n)

	count, err := f.docs.CountChunks(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestIndexingService_EnsureIndexed_ExtractionFailureIsSwallowed(t *testing.T) {
	f := newIndexingFixture(t)
	ctx := context.Background()
	id := f.addDocument(t, "/docs/broken.pdf", "")
	f.extractor.results["/docs/broken.pdf"] = domain.FailedExtraction(domain.ErrExtractionFailed)

	n, err := f.service.EnsureIndexed(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, f.embedder.Calls())
}

func TestIndexingService_EnsureIndexed_UnsupportedType(t *testing.T) {
	f := newIndexingFixture(t)
	ctx := context.Background()
	id, _, err := f.docs.InsertDocument(ctx, &domain.Document{Path: "/docs/photo.heic"})
	require.NoError(t, err)

	n, err := f.service.EnsureIndexed(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestIndexingService_EnsureIndexed_EmbeddingFailureWritesNothing(t *testing.T) {
	f := newIndexingFixture(t)
	ctx := context.Background()
	id := f.addDocument(t, "/docs/a.txt", "AAAAABBBBBCCCCC")
	f.embedder.failOn = "BCCCC"

	n, err := f.service.EnsureIndexed(ctx, id)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingFailed)
	assert.Zero(t, n)

	count, err := f.docs.CountChunks(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, count)

	doc, err := f.docs.GetDocument(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, doc.Embedding)
}

func TestIndexingService_EnsureIndexed_FailedReindexKeepsPreviousChunks(t *testing.T) {
	f := newIndexingFixture(t)
	ctx := context.Background()
	id := f.addDocument(t, "/docs/a.txt", "AAAAABBBBBCCCCC")

	_, err := f.service.EnsureIndexed(ctx, id)
	require.NoError(t, err)

	f.embedder.failOn = "Z"
	f.extractor.set("/docs/a.txt", "ZZZZZ")
	_, err = f.service.Reindex(ctx, id)
	require.ErrorIs(t, err, domain.ErrEmbeddingFailed)

	chunks, err := f.docs.ListChunks(ctx, []int64{id})
	require.NoError(t, err)
	require.Len(t, chunks, 5)
	assert.Equal(t, "AAAAA", chunks[0].Content)
}

func TestIndexingService_EnsureIndexed_EmbedderUnavailable(t *testing.T) {
	f := newIndexingFixture(t)
	ctx := context.Background()
	id := f.addDocument(t, "/docs/a.txt", "hello")
	f.embedder.err = domain.ErrEmbeddingUnavailable

	_, err := f.service.EnsureIndexed(ctx, id)
	assert.ErrorIs(t, err, domain.ErrEmbeddingFailed)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestIndexingService_EnsureIndexed_NotFound(t *testing.T) {
	f := newIndexingFixture(t)

	_, err := f.service.EnsureIndexed(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIndexingService_StaleDocumentIsRebuilt(t *testing.T) {
	f := newIndexingFixture(t)
	ctx := context.Background()
	id := f.addDocument(t, "/docs/a.txt", "AAAAABBBBBCCCCC")

	_, err := f.service.EnsureIndexed(ctx, id)
	require.NoError(t, err)

	// The file changes on disk.
	f.scanner.addFile("/docs/a.txt", 7)
	f.extractor.set("/docs/a.txt", "XXXXXYY")

	status, err := f.service.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.IndexStatusStale, status)

	n, err := f.service.EnsureIndexed(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	chunks, err := f.docs.ListChunks(ctx, []int64{id})
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
	}
	assert.Equal(t, "XXXXX", chunks[0].Content)

	status, err = f.service.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.IndexStatusIndexed, status)
}

func TestIndexingService_FileEmptiedClearsChunks(t *testing.T) {
	f := newIndexingFixture(t)
	ctx := context.Background()
	id := f.addDocument(t, "/docs/a.txt", "AAAAABBBBBCCCCC")

	_, err := f.service.EnsureIndexed(ctx, id)
	require.NoError(t, err)

	f.scanner.addFile("/docs/a.txt", 0)
	f.extractor.set("/docs/a.txt", "")

	n, err := f.service.EnsureIndexed(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, n)

	status, err := f.service.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.IndexStatusNotIndexed, status)
}

func TestIndexingService_Status(t *testing.T) {
	f := newIndexingFixture(t)
	ctx := context.Background()
	id := f.addDocument(t, "/docs/a.txt", "AAAAA")

	status, err := f.service.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.IndexStatusNotIndexed, status)

	// Chunks without a document embedding are stale.
	require.NoError(t, f.docs.InsertChunk(ctx, domain.Chunk{DocumentID: id, Index: 0, Content: "AAAAA"}))
	status, err = f.service.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.IndexStatusStale, status)

	n, err := f.service.EnsureIndexed(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	status, err = f.service.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.IndexStatusIndexed, status)

	// A missing file cannot be checked, so existing chunks are kept.
	f.scanner.remove("/docs/a.txt")
	status, err = f.service.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.IndexStatusIndexed, status)

	_, err = f.service.Status(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIndexingService_Reindex(t *testing.T) {
	f := newIndexingFixture(t)
	ctx := context.Background()
	id := f.addDocument(t, "/docs/a.txt", "AAAAABBBBBCCCCC")

	_, err := f.service.EnsureIndexed(ctx, id)
	require.NoError(t, err)

	n, err := f.service.Reindex(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	count, err := f.docs.CountChunks(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestIndexingService_ConcurrentEnsureIndexed(t *testing.T) {
	f := newIndexingFixture(t)
	ctx := context.Background()
	id := f.addDocument(t, "/docs/a.txt", "AAAAABBBBBCCCCC")

	var total atomic.Int64
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := f.service.EnsureIndexed(ctx, id)
			assert.NoError(t, err)
			total.Add(int64(n))
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(5), total.Load())
	assert.Equal(t, 5, f.embedder.Calls())
}

func TestIndexingService_IndexAll(t *testing.T) {
	f := newIndexingFixture(t)
	ctx := context.Background()
	f.addDocument(t, "/docs/a.txt", "AAAAABBBBBCCCCC")
	bad := f.addDocument(t, "/docs/b.txt", "QQQQQ")
	f.addDocument(t, "/docs/c.txt", "")
	f.embedder.failOn = "Q"

	report, err := f.service.IndexAll(ctx, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingFailed)

	assert.Equal(t, 3, report.Documents)
	assert.Equal(t, 1, report.Indexed)
	assert.Equal(t, 5, report.Chunks)
	require.Len(t, report.Failed, 1)
	assert.Contains(t, report.Failed, bad)

	// Running again only retries the failed document.
	f.embedder.failOn = ""
	report, err = f.service.IndexAll(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Indexed)
	assert.Equal(t, 1, report.Chunks)
}

func TestIndexingService_IndexAll_Cancelled(t *testing.T) {
	f := newIndexingFixture(t)
	f.addDocument(t, "/docs/a.txt", "AAAAA")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.IndexAll(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
