package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/deepdocs/internal/core/ports/driven"
	"github.com/custodia-labs/deepdocs/internal/logger"
)

// Pipeline rasterizes a document and recognises every page in order.
type Pipeline struct {
	rasterizer driven.PageRasterizer
	recognizer driven.TextRecognizer

	// baseDir holds the scratch directories. Empty means os.TempDir.
	baseDir string
}

// NewPipeline creates an OCR pipeline.
func NewPipeline(rasterizer driven.PageRasterizer, recognizer driven.TextRecognizer, baseDir string) *Pipeline {
	return &Pipeline{
		rasterizer: rasterizer,
		recognizer: recognizer,
		baseDir:    baseDir,
	}
}

// Recognize returns the text of every page of path joined by newlines.
// It stops once maxChars characters have been collected; maxChars <= 0
// reads every page. The scratch directory is removed on every return path.
func (p *Pipeline) Recognize(ctx context.Context, path string, maxChars int) (string, error) {
	dir, err := os.MkdirTemp(p.baseDir, "ocr-"+uuid.NewString()+"-")
	if err != nil {
		return "", fmt.Errorf("create ocr scratch dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			logger.Warn("Failed to remove OCR scratch dir %s: %v", dir, err)
		}
	}()

	pages, err := p.rasterizer.Rasterize(ctx, path, dir)
	if err != nil {
		return "", err
	}
	logger.Debug("OCR: %d pages rasterized for %s", len(pages), path)

	var b strings.Builder
	chars := 0
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := p.recognizer.Recognize(ctx, page)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i+1, err)
		}

		b.WriteString("\n")
		b.WriteString(text)
		chars += 1 + utf8.RuneCountInString(text)
		if maxChars > 0 && chars >= maxChars {
			logger.Debug("OCR: stopped after page %d of %d, limit reached", i+1, len(pages))
			break
		}
	}

	return b.String(), nil
}
