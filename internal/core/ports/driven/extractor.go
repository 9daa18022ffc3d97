package driven

import (
	"context"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
)

// TextExtractor turns a file into plain text.
// It never returns an error: failures are reported through the
// Extraction status so callers can tell "no content" from "crashed".
type TextExtractor interface {
	Extract(ctx context.Context, path string) domain.Extraction
}

// FormatExtractor extracts raw text for a family of file extensions.
// Registries dispatch to format extractors and apply length limits.
type FormatExtractor interface {
	// Extensions returns the lowercase extensions handled, including the dot.
	Extensions() []string

	// ExtractText reads the file at path. maxChars is a hint that lets
	// slow extractors stop early; the registry truncates regardless.
	ExtractText(ctx context.Context, path string, maxChars int) (ExtractedText, error)
}

// ExtractedText is the output of a FormatExtractor.
type ExtractedText struct {
	Text string

	// OCR is set when the text came from optical character recognition.
	OCR bool
}

// PageRasterizer renders every page of a document to an image file.
type PageRasterizer interface {
	// Rasterize writes page images into dir and returns their paths in
	// page order. The caller owns dir and removes it.
	Rasterize(ctx context.Context, path, dir string) ([]string, error)
}

// TextRecognizer runs optical character recognition on an image.
type TextRecognizer interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}
