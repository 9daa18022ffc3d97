package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
	"github.com/custodia-labs/deepdocs/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Known texts map to fixed vectors; other non-blank texts get a vector
// derived from their first byte.
type mockEmbeddingService struct {
	mu      sync.Mutex
	vectors map[string][]float32
	failOn  string
	err     error
	calls   int
	dims    int
	model   string

	// wordsOnly makes texts without letters or digits embed to nothing,
	// like a tokenizer that drops punctuation.
	wordsOnly bool
}

func newMockEmbedder(vectors map[string][]float32) *mockEmbeddingService {
	return &mockEmbeddingService{vectors: vectors}
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.err != nil {
		return nil, m.err
	}
	if m.failOn != "" && strings.Contains(text, m.failOn) {
		return nil, errors.New("model crashed")
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if m.wordsOnly && !strings.ContainsFunc(text, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) {
		return nil, nil
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	vec := make([]float32, m.dimensions())
	vec[0], vec[1] = float32(text[0]), 1
	return vec, nil
}

func (m *mockEmbeddingService) dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return 3
}

// switchModel makes later vectors come from a different model.
func (m *mockEmbeddingService) switchModel(model string, dims int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.model, m.dims = model, dims
}

func (m *mockEmbeddingService) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockEmbeddingService) Dimensions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dimensions()
}

func (m *mockEmbeddingService) ModelName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.model == "" {
		return "mock"
	}
	return m.model
}

func (m *mockEmbeddingService) Ping(_ context.Context) error { return m.err }
func (m *mockEmbeddingService) Close() error                 { return nil }

// mockExtractor implements driven.TextExtractor for testing.
type mockExtractor struct {
	mu      sync.Mutex
	results map[string]domain.Extraction
	calls   map[string]int
}

func newMockExtractor() *mockExtractor {
	return &mockExtractor{
		results: make(map[string]domain.Extraction),
		calls:   make(map[string]int),
	}
}

func (m *mockExtractor) set(path, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[path] = domain.Extracted(text)
}

func (m *mockExtractor) Extract(_ context.Context, path string) domain.Extraction {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[path]++
	if r, ok := m.results[path]; ok {
		return r
	}
	return domain.UnsupportedExtraction()
}

// mockScanner implements driven.FileScanner for testing.
type mockScanner struct {
	mu    sync.Mutex
	files map[string]driven.FileInfo
	dirs  map[string][]string
}

func newMockScanner() *mockScanner {
	return &mockScanner{
		files: make(map[string]driven.FileInfo),
		dirs:  make(map[string][]string),
	}
}

func (m *mockScanner) addFile(path string, size int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name := path[strings.LastIndex(path, "/")+1:]
	m.files[path] = driven.FileInfo{
		Path:        path,
		Name:        name,
		Size:        size,
		ModifiedAt:  time.Unix(1700000000, 0),
		Fingerprint: fmt.Sprintf("%s:%d", path, size),
	}
}

func (m *mockScanner) addDir(path string, children ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = driven.FileInfo{Path: path, Name: path, IsDir: true}
	m.dirs[path] = children
}

func (m *mockScanner) remove(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
}

func (m *mockScanner) Stat(_ context.Context, path string) (driven.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.files[path]
	if !ok {
		return driven.FileInfo{}, fmt.Errorf("stat %s: %w", path, fs.ErrNotExist)
	}
	return info, nil
}

func (m *mockScanner) Files(_ context.Context, root string) iter.Seq2[string, error] {
	m.mu.Lock()
	children := m.dirs[root]
	m.mu.Unlock()
	return func(yield func(string, error) bool) {
		for _, c := range children {
			if !yield(c, nil) {
				return
			}
		}
	}
}
