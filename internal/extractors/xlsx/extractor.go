// Package xlsx extracts cell text from Excel workbooks.
package xlsx

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/deepdocs/internal/core/ports/driven"
	"github.com/custodia-labs/deepdocs/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.FormatExtractor = (*Extractor)(nil)

// Extractor handles XLSX workbooks.
type Extractor struct{}

// New creates a new XLSX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".xlsx"}
}

// ExtractText renders every sheet as a "Sheet: name" line followed by
// tab-separated rows.
func (e *Extractor) ExtractText(ctx context.Context, path string, maxChars int) (driven.ExtractedText, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return driven.ExtractedText{}, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return driven.ExtractedText{}, err
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			logger.Warn("Skipping sheet %q of %s: %v", sheet, path, err)
			continue
		}
		if len(rows) == 0 {
			continue
		}

		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Sheet: ")
		b.WriteString(sheet)
		b.WriteString("\n")
		for _, row := range rows {
			b.WriteString(strings.Join(row, "\t"))
			b.WriteString("\n")
		}

		if maxChars > 0 && utf8.RuneCountInString(b.String()) >= maxChars {
			break
		}
	}

	return driven.ExtractedText{Text: b.String()}, nil
}
