// Package extractors turns documents on disk into plain text.
//
// The Registry dispatches on the lowercase file extension to a format
// extractor and truncates the result to the configured maximum length.
// Outcomes are reported as domain.Extraction values; extraction never
// returns an error.
package extractors

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
	"github.com/custodia-labs/deepdocs/internal/core/ports/driven"
	"github.com/custodia-labs/deepdocs/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.TextExtractor = (*Registry)(nil)

// DefaultMaxChars caps extracted text when no limit is configured.
const DefaultMaxChars = 20000

// Registry maps file extensions to format extractors.
type Registry struct {
	mu         sync.RWMutex
	extractors map[string]driven.FormatExtractor
	maxChars   int
}

// NewRegistry creates a registry that truncates text to maxChars characters.
func NewRegistry(maxChars int, extractors ...driven.FormatExtractor) *Registry {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	r := &Registry{
		extractors: make(map[string]driven.FormatExtractor),
		maxChars:   maxChars,
	}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// Register adds an extractor for each of its extensions, replacing any
// previous registration.
func (r *Registry) Register(e driven.FormatExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range e.Extensions() {
		r.extractors[strings.ToLower(ext)] = e
	}
}

// Extensions returns all registered extensions, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.extractors))
	for ext := range r.extractors {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Supports reports whether path has a registered extension.
func (r *Registry) Supports(path string) bool {
	_, ok := r.lookup(path)
	return ok
}

// MaxChars returns the truncation limit.
func (r *Registry) MaxChars() int {
	return r.maxChars
}

// Extract reads the text of the file at path.
func (r *Registry) Extract(ctx context.Context, path string) domain.Extraction {
	e, ok := r.lookup(path)
	if !ok {
		logger.Debug("No extractor for %s", path)
		return domain.UnsupportedExtraction()
	}

	if _, err := os.Stat(path); err != nil {
		return r.failed(path, err)
	}

	out, err := e.ExtractText(ctx, path, r.maxChars)
	if err != nil {
		return r.failed(path, err)
	}

	truncated := utf8.RuneCountInString(out.Text) > r.maxChars
	result := domain.Extracted(domain.TruncateRunes(out.Text, r.maxChars))
	result.OCR = out.OCR
	result.Truncated = truncated && result.Status == domain.ExtractionExtracted

	logger.Debug("Extracted %s: status=%s chars=%d ocr=%t truncated=%t",
		path, result.Status, utf8.RuneCountInString(result.Text), result.OCR, result.Truncated)
	return result
}

func (r *Registry) lookup(path string) (driven.FormatExtractor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.extractors[strings.ToLower(filepath.Ext(path))]
	return e, ok
}

func (r *Registry) failed(path string, err error) domain.Extraction {
	logger.Warn("Extraction failed for %s: %v", path, err)
	return domain.FailedExtraction(fmt.Errorf("%w: %s: %w", domain.ErrExtractionFailed, path, err))
}
