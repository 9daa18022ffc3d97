package extractors

import (
	"github.com/custodia-labs/deepdocs/internal/core/domain"
	"github.com/custodia-labs/deepdocs/internal/extractors/docx"
	"github.com/custodia-labs/deepdocs/internal/extractors/eml"
	"github.com/custodia-labs/deepdocs/internal/extractors/html"
	"github.com/custodia-labs/deepdocs/internal/extractors/ocr"
	"github.com/custodia-labs/deepdocs/internal/extractors/pdf"
	"github.com/custodia-labs/deepdocs/internal/extractors/plaintext"
	"github.com/custodia-labs/deepdocs/internal/extractors/xlsx"
	"github.com/custodia-labs/deepdocs/internal/logger"
)

// NewDefault creates a registry with every built-in format extractor,
// configured from settings. ocrDir holds OCR scratch directories; empty
// means the system temp dir.
func NewDefault(settings domain.ExtractionSettings, ocrDir string) *Registry {
	pdfOpts := []pdf.Option{pdf.WithMinTextChars(settings.MinTextChars)}
	if settings.OCREnabled {
		if err := ocr.CheckAvailable(); err != nil {
			logger.Debug("OCR tools unavailable: %v", err)
		}
		pipeline := ocr.NewPipeline(
			ocr.NewRasterizer(nil),
			ocr.NewRecognizer(nil, settings.OCRLanguage),
			ocrDir,
		)
		pdfOpts = append(pdfOpts, pdf.WithOCR(pipeline))
	}

	return NewRegistry(settings.MaxChars,
		plaintext.New(),
		pdf.New(pdfOpts...),
		docx.New(),
		xlsx.New(),
		html.New(),
		eml.New(),
	)
}
