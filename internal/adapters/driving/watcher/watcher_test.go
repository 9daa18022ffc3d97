package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deepdocs/internal/adapters/driven/embedding/local"
	"github.com/custodia-labs/deepdocs/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/deepdocs/internal/core/domain"
	"github.com/custodia-labs/deepdocs/internal/core/services"
	"github.com/custodia-labs/deepdocs/internal/extractors"
	"github.com/custodia-labs/deepdocs/internal/extractors/plaintext"
	"github.com/custodia-labs/deepdocs/internal/postprocessors/chunker"
	"github.com/custodia-labs/deepdocs/internal/scanner"
)

type fixture struct {
	documents *services.DocumentService
	indexing  *services.IndexingService
	dir       string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	docStore, collectionStore := memory.NewStores()
	fileScanner := scanner.New()
	registry := extractors.NewRegistry(0, plaintext.New())
	processor, err := chunker.New(chunker.WithChunkSize(50), chunker.WithOverlap(5))
	require.NoError(t, err)

	indexing := services.NewIndexingService(docStore, registry, processor, local.NewEmbeddingService(32), fileScanner)
	documents := services.NewDocumentService(docStore, collectionStore, fileScanner)
	documents.SetIndexingService(indexing)

	return &fixture{documents: documents, indexing: indexing, dir: t.TempDir()}
}

func (f *fixture) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (f *fixture) paths(t *testing.T) []string {
	t.Helper()
	docs, err := f.documents.List(context.Background())
	require.NoError(t, err)
	paths := make([]string, 0, len(docs))
	for i := range docs {
		paths = append(paths, docs[i].Path)
	}
	return paths
}

func TestClassify(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	hidden := filepath.Join(dir, ".secret.txt")
	require.NoError(t, os.WriteFile(hidden, []byte("x"), 0o644))
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))

	tests := []struct {
		name   string
		event  fsnotify.Event
		want   ChangeType
		wantOK bool
	}{
		{"create file", fsnotify.Event{Name: file, Op: fsnotify.Create}, ChangeCreated, true},
		{"write file", fsnotify.Event{Name: file, Op: fsnotify.Write}, ChangeUpdated, true},
		{"write and chmod", fsnotify.Event{Name: file, Op: fsnotify.Write | fsnotify.Chmod}, ChangeUpdated, true},
		{"remove", fsnotify.Event{Name: filepath.Join(dir, "gone.txt"), Op: fsnotify.Remove}, ChangeDeleted, true},
		{"rename", fsnotify.Event{Name: filepath.Join(dir, "old.txt"), Op: fsnotify.Rename}, ChangeDeleted, true},
		{"chmod only", fsnotify.Event{Name: file, Op: fsnotify.Chmod}, 0, false},
		{"directory", fsnotify.Event{Name: sub, Op: fsnotify.Create}, 0, false},
		{"hidden", fsnotify.Event{Name: hidden, Op: fsnotify.Write}, 0, false},
		{"vanished before stat", fsnotify.Event{Name: filepath.Join(dir, "tmp.txt"), Op: fsnotify.Create}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change, ok := classify(tt.event)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, change.Type)
				assert.Equal(t, tt.event.Name, change.Path)
			}
		})
	}
}

func TestChangeType_String(t *testing.T) {
	assert.Equal(t, "created", ChangeCreated.String())
	assert.Equal(t, "updated", ChangeUpdated.String())
	assert.Equal(t, "deleted", ChangeDeleted.String())
	assert.Equal(t, "unknown", ChangeType(0).String())
}

func TestWatcher_Apply(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := New(f.documents, f.indexing)

	path := f.write(t, "notes.txt", "meeting notes about the budget")
	require.NoError(t, w.apply(ctx, Change{Type: ChangeCreated, Path: path}))
	assert.Equal(t, []string{path}, f.paths(t))

	docs, err := f.documents.List(ctx)
	require.NoError(t, err)
	status, err := f.indexing.Status(ctx, docs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IndexStatusIndexed, status)

	require.NoError(t, w.apply(ctx, Change{Type: ChangeUpdated, Path: path}))
	assert.Len(t, f.paths(t), 1, "updates do not duplicate documents")

	require.NoError(t, os.Remove(path))
	require.NoError(t, w.apply(ctx, Change{Type: ChangeDeleted, Path: path}))
	assert.Empty(t, f.paths(t))
}

func TestWatcher_ApplyDirectoryRemoval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := New(f.documents, nil)

	f.write(t, "keep.txt", "keep")
	f.write(t, "sub/one.txt", "one")
	f.write(t, "sub/two.txt", "two")
	_, err := f.documents.Add(ctx, []string{f.dir})
	require.NoError(t, err)
	require.Len(t, f.paths(t), 3)

	require.NoError(t, w.apply(ctx, Change{Type: ChangeDeleted, Path: filepath.Join(f.dir, "sub")}))
	assert.Equal(t, []string{filepath.Join(f.dir, "keep.txt")}, f.paths(t))
}

func TestWatcher_ApplyVanishedFile(t *testing.T) {
	f := newFixture(t)
	w := New(f.documents, f.indexing)

	err := w.apply(context.Background(), Change{Type: ChangeCreated, Path: filepath.Join(f.dir, "never.txt")})
	assert.NoError(t, err)
	assert.Empty(t, f.paths(t))
}

func TestWatcher_Watch(t *testing.T) {
	f := newFixture(t)

	var mu sync.Mutex
	var changes []Change
	applied := make(chan struct{}, 16)
	w := New(f.documents, f.indexing, WithDelay(0), WithOnChange(func(c Change, err error) {
		assert.NoError(t, err)
		mu.Lock()
		changes = append(changes, c)
		mu.Unlock()
		applied <- struct{}{}
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx, f.dir) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	path := f.write(t, "new.txt", "fresh document")

	select {
	case <-applied:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change")
	}
	assert.Contains(t, f.paths(t), path)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, changes)
	assert.Equal(t, path, changes[0].Path)
}

func TestWatcher_Debounce(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "burst.txt", "content")

	var mu sync.Mutex
	calls := 0
	w := New(f.documents, f.indexing, WithDelay(30*time.Millisecond), WithOnChange(func(Change, error) {
		mu.Lock()
		calls++
		mu.Unlock()
	}))

	ctx := context.Background()
	for range 5 {
		w.schedule(ctx, Change{Type: ChangeUpdated, Path: path})
	}
	w.drain()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestWatcher_WatchErrors(t *testing.T) {
	f := newFixture(t)
	w := New(f.documents, f.indexing)

	assert.Error(t, w.Watch(context.Background()))

	err := w.Watch(context.Background(), filepath.Join(f.dir, "missing"))
	assert.ErrorContains(t, err, "root path error")

	file := f.write(t, "plain.txt", "x")
	err = w.Watch(context.Background(), file)
	assert.ErrorContains(t, err, "not a directory")
}

func TestWithin(t *testing.T) {
	assert.True(t, within("/a/b", "/a/b/c.txt"))
	assert.True(t, within("/a/b", "/a/b/c/d.txt"))
	assert.False(t, within("/a/b", "/a/b"))
	assert.False(t, within("/a/b", "/a/bc/d.txt"))
	assert.False(t, within("/a/b", "/a/other.txt"))
}
