package scanner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
)

func writeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, rel := range files {
		p := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(rel), 0o644))
	}
	return root
}

func collect(t *testing.T, seq func(func(string, error) bool)) ([]string, []error) {
	t.Helper()
	var paths []string
	var errs []error
	for p, err := range seq {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		paths = append(paths, p)
	}
	return paths, errs
}

func TestScanner_Stat(t *testing.T) {
	root := writeTree(t, "a.txt")
	s := New()
	path := filepath.Join(root, "a.txt")

	info, err := s.Stat(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", info.Name)
	assert.Equal(t, int64(5), info.Size)
	assert.False(t, info.IsDir)
	assert.NotEmpty(t, info.Fingerprint)

	again, err := s.Stat(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, info.Fingerprint, again.Fingerprint)

	t.Run("fingerprint changes with content", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("longer content"), 0o644))
		later := time.Now().Add(time.Minute)
		require.NoError(t, os.Chtimes(path, later, later))

		changed, err := s.Stat(context.Background(), path)
		require.NoError(t, err)
		assert.NotEqual(t, info.Fingerprint, changed.Fingerprint)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := s.Stat(context.Background(), filepath.Join(root, "nope"))
		assert.True(t, errors.Is(err, fs.ErrNotExist))
	})

	t.Run("directory", func(t *testing.T) {
		info, err := s.Stat(context.Background(), root)
		require.NoError(t, err)
		assert.True(t, info.IsDir)
	})
}

func TestFingerprint(t *testing.T) {
	base := Fingerprint("/a.txt", 10, 100)
	assert.Equal(t, base, Fingerprint("/a.txt", 10, 100))
	assert.NotEqual(t, base, Fingerprint("/b.txt", 10, 100))
	assert.NotEqual(t, base, Fingerprint("/a.txt", 11, 100))
	assert.NotEqual(t, base, Fingerprint("/a.txt", 10, 101))
}

func TestScanner_Files(t *testing.T) {
	root := writeTree(t,
		"b.txt",
		"a.md",
		"nested/deep/c.pdf",
		".hidden",
		".git/config",
	)

	t.Run("yields regular files in lexical order and skips hidden entries", func(t *testing.T) {
		paths, errs := collect(t, New().Files(context.Background(), root))
		assert.Empty(t, errs)
		assert.Equal(t, []string{
			filepath.Join(root, "a.md"),
			filepath.Join(root, "b.txt"),
			filepath.Join(root, "nested", "deep", "c.pdf"),
		}, paths)
	})

	t.Run("includes hidden entries when asked", func(t *testing.T) {
		paths, _ := collect(t, New(WithHidden()).Files(context.Background(), root))
		assert.Len(t, paths, 5)
	})

	t.Run("single pass", func(t *testing.T) {
		seq := New().Files(context.Background(), root)
		first, _ := collect(t, seq)
		assert.Len(t, first, 3)

		second, errs := collect(t, seq)
		assert.Empty(t, second)
		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], domain.ErrSequenceConsumed)
	})

	t.Run("stops early when the consumer breaks", func(t *testing.T) {
		count := 0
		for _, err := range New().Files(context.Background(), root) {
			require.NoError(t, err)
			count++
			break
		}
		assert.Equal(t, 1, count)
	})

	t.Run("missing root", func(t *testing.T) {
		paths, errs := collect(t, New().Files(context.Background(), filepath.Join(root, "missing")))
		assert.Empty(t, paths)
		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], fs.ErrNotExist)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		paths, errs := collect(t, New().Files(ctx, root))
		assert.Empty(t, paths)
		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], context.Canceled)
	})

	t.Run("empty directory", func(t *testing.T) {
		paths, errs := collect(t, New().Files(context.Background(), t.TempDir()))
		assert.Empty(t, paths)
		assert.Empty(t, errs)
	})
}
