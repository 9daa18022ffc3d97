// Package pdf extracts the text layer of PDF files and falls back to
// optical character recognition for scanned documents.
package pdf

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/deepdocs/internal/core/ports/driven"
	"github.com/custodia-labs/deepdocs/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.FormatExtractor = (*Extractor)(nil)

// DefaultMinTextChars is the text-layer length below which a PDF is
// treated as scanned.
const DefaultMinTextChars = 50

// Recognizer reads the text of a whole document optically.
type Recognizer interface {
	Recognize(ctx context.Context, path string, maxChars int) (string, error)
}

// Extractor handles PDF documents.
type Extractor struct {
	ocr          Recognizer
	minTextChars int
	textLayer    func(ctx context.Context, path string, maxChars int) (string, error)
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithOCR enables the recognition fallback.
func WithOCR(ocr Recognizer) Option {
	return func(e *Extractor) {
		e.ocr = ocr
	}
}

// WithMinTextChars sets the scanned-document threshold.
func WithMinTextChars(n int) Option {
	return func(e *Extractor) {
		if n >= 0 {
			e.minTextChars = n
		}
	}
}

// New creates a new PDF extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		minTextChars: DefaultMinTextChars,
		textLayer:    readTextLayer,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".pdf"}
}

// ExtractText reads the text layer. When it holds fewer than the
// threshold characters and OCR is enabled, the recognised text of every
// page is appended.
func (e *Extractor) ExtractText(ctx context.Context, path string, maxChars int) (driven.ExtractedText, error) {
	text, err := e.textLayer(ctx, path, maxChars)
	if err != nil {
		return driven.ExtractedText{}, err
	}
	text = strings.TrimSpace(text)

	if e.ocr == nil || utf8.RuneCountInString(text) >= e.minTextChars {
		return driven.ExtractedText{Text: text}, nil
	}

	logger.Info("OCR fallback for %s", path)
	recognized, err := e.ocr.Recognize(ctx, path, maxChars)
	if err != nil {
		if ctx.Err() != nil || text == "" {
			return driven.ExtractedText{}, fmt.Errorf("ocr: %w", err)
		}
		logger.Warn("OCR failed for %s, keeping text layer: %v", path, err)
		return driven.ExtractedText{Text: text}, nil
	}

	return driven.ExtractedText{Text: text + recognized, OCR: true}, nil
}

// readTextLayer concatenates the plain text of each page, stopping once
// maxChars characters have been read.
func readTextLayer(ctx context.Context, path string, maxChars int) (text string, err error) {
	// The parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	chars := 0
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}

		b.WriteString(pageText)
		chars += utf8.RuneCountInString(pageText)
		if maxChars > 0 && chars >= maxChars {
			break
		}
	}

	return b.String(), nil
}
