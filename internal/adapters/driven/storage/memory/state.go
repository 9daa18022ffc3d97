package memory

import (
	"slices"
	"sync"
	"time"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
)

// library is the shared state behind the in-memory document and
// collection stores, so deletes can cascade across both.
type library struct {
	mu sync.RWMutex

	nextDocumentID   int64
	nextCollectionID int64

	documents   map[int64]domain.Document
	paths       map[string]int64
	chunks      map[int64][]domain.Chunk
	collections map[int64]domain.Collection
	members     map[int64]map[int64]struct{}

	now func() time.Time
}

func newLibrary() *library {
	return &library{
		documents:   make(map[int64]domain.Document),
		paths:       make(map[string]int64),
		chunks:      make(map[int64][]domain.Chunk),
		collections: make(map[int64]domain.Collection),
		members:     make(map[int64]map[int64]struct{}),
		now:         time.Now,
	}
}

// NewStores creates an in-memory document store and collection store
// that share state, matching the cascade behaviour of the SQLite store.
func NewStores() (*DocumentStore, *CollectionStore) {
	lib := newLibrary()
	return &DocumentStore{lib: lib}, &CollectionStore{lib: lib}
}

func cloneVector(v []float32) []float32 {
	if v == nil {
		return nil
	}
	return slices.Clone(v)
}

func cloneDocument(d domain.Document) domain.Document {
	d.Embedding = cloneVector(d.Embedding)
	return d
}

func cloneChunk(c domain.Chunk) domain.Chunk {
	c.Embedding = cloneVector(c.Embedding)
	return c
}
