package file

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*ConfigStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	return store, dir
}

func TestNewConfigStore(t *testing.T) {
	store, dir := newTestStore(t)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())

	_, ok := store.Get("anything")
	assert.False(t, ok)

	nested := filepath.Join(dir, "a", "b")
	_, err := NewConfigStore(nested)
	require.NoError(t, err)
	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestNewConfigStore_Errors(t *testing.T) {
	t.Run("cannot create directory", func(t *testing.T) {
		store, err := NewConfigStore("/dev/null/cannot/create")
		assert.Error(t, err)
		assert.Nil(t, store)
	})

	t.Run("corrupt file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not toml {{[["), 0600))
		store, err := NewConfigStore(dir)
		assert.ErrorContains(t, err, "parsing")
		assert.Nil(t, store)
	})

	t.Run("comment-only file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("# empty\n"), 0600))
		_, err := NewConfigStore(dir)
		assert.NoError(t, err)
	})
}

func TestConfigStore_KeepsDecodedTypes(t *testing.T) {
	store, dir := newTestStore(t)
	require.NoError(t, store.Set("embedding.provider", "ollama"))
	require.NoError(t, store.Set("chunking.size", 800))
	require.NoError(t, store.Set("embedding.requests_per_second", 2.5))
	require.NoError(t, store.Set("extraction.ocr_enabled", true))

	v, _ := store.Get("chunking.size")
	assert.Equal(t, 800, v)

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"chunking.size",
		"embedding.provider",
		"embedding.requests_per_second",
		"extraction.ocr_enabled",
	}, reloaded.Keys())

	v, _ = reloaded.Get("chunking.size")
	assert.Equal(t, int64(800), v)
	v, _ = reloaded.Get("embedding.requests_per_second")
	assert.Equal(t, 2.5, v)
	v, _ = reloaded.Get("extraction.ocr_enabled")
	assert.Equal(t, true, v)
}

func TestConfigStore_PersistsNestedTables(t *testing.T) {
	store, dir := newTestStore(t)
	require.NoError(t, store.Set("embedding.provider", "ollama"))
	require.NoError(t, store.Set("embedding.dimensions", 768))
	require.NoError(t, store.Set("embedding.requests_per_second", 1.5))
	require.NoError(t, store.Set("search.top_k", 5))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "# deepdocs settings."))
	assert.Contains(t, string(raw), "[embedding]")
	assert.Contains(t, string(raw), "[search]")
	assert.False(t, strings.Contains(string(raw), "'embedding.provider'"))

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assertValue(t, reloaded, "embedding.provider", "ollama")
	assertValue(t, reloaded, "embedding.dimensions", int64(768))
	assertValue(t, reloaded, "embedding.requests_per_second", 1.5)
	assertValue(t, reloaded, "search.top_k", int64(5))
}

func TestConfigStore_Delete(t *testing.T) {
	store, dir := newTestStore(t)
	require.NoError(t, store.Set("chunking.size", 500))
	require.NoError(t, store.Set("chunking.overlap", 50))

	require.NoError(t, store.Delete("chunking.size"))
	require.NoError(t, store.Delete("never.set"))

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	_, ok := reloaded.Get("chunking.size")
	assert.False(t, ok)
	assertValue(t, reloaded, "chunking.overlap", int64(50))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Set("k", "v"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_WriteErrors(t *testing.T) {
	t.Run("unmarshallable value", func(t *testing.T) {
		store, _ := newTestStore(t)
		assert.Error(t, store.Set("channel", make(chan int)))
		_, ok := store.Get("channel")
		assert.False(t, ok)
	})

	t.Run("path is a directory", func(t *testing.T) {
		store, _ := newTestStore(t)
		require.NoError(t, os.Mkdir(store.Path(), 0700))
		assert.Error(t, store.Set("k", "v"))
	})

	t.Run("reload of corrupted file", func(t *testing.T) {
		store, _ := newTestStore(t)
		require.NoError(t, store.Set("k", "v"))
		require.NoError(t, os.WriteFile(store.Path(), []byte("][}{"), 0600))
		assert.Error(t, store.Load())
	})
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, _ := newTestStore(t)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := "search.key" + string(rune('0'+i))
			_ = store.Set(key, i)
			_, _ = store.Get(key)
		}()
	}
	wg.Wait()

	for i := range 10 {
		assertValue(t, store, "search.key"+string(rune('0'+i)), i)
	}
	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")
}

func TestNest(t *testing.T) {
	nested := nest(map[string]any{
		"a.b":   1,
		"a.c.d": "x",
		"top":   true,
	})
	assert.Equal(t, map[string]any{
		"a":   map[string]any{"b": 1, "c": map[string]any{"d": "x"}},
		"top": true,
	}, nested)

	flat := make(map[string]any)
	flatten(nested, "", flat)
	assert.Equal(t, map[string]any{"a.b": 1, "a.c.d": "x", "top": true}, flat)
}

func TestNest_PrefixValue(t *testing.T) {
	nested := nest(map[string]any{"a": 1, "a.b": 2})
	assert.Equal(t, map[string]any{"a": 1, "a.b": 2}, nested)
}

func assertValue(t *testing.T, store *ConfigStore, key string, want any) {
	t.Helper()
	got, ok := store.Get(key)
	require.True(t, ok, key)
	assert.Equal(t, want, got, key)
}
