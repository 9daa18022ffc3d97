// Package plaintext reads text-based files as they are.
package plaintext

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/deepdocs/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.FormatExtractor = (*Extractor)(nil)

// Extractor handles plain text files.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".txt", ".md", ".csv", ".json", ".log"}
}

// ExtractText reads the file. When maxChars is positive, at most enough
// bytes for maxChars characters are read.
func (e *Extractor) ExtractText(_ context.Context, path string, maxChars int) (driven.ExtractedText, error) {
	f, err := os.Open(path)
	if err != nil {
		return driven.ExtractedText{}, err
	}
	defer f.Close()

	var r io.Reader = f
	if maxChars > 0 {
		r = io.LimitReader(f, int64(maxChars)*utf8.UTFMax)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return driven.ExtractedText{}, fmt.Errorf("read %s: %w", path, err)
	}

	return driven.ExtractedText{Text: strings.ToValidUTF8(string(data), "�")}, nil
}
