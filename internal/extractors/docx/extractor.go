// Package docx extracts paragraph text from Word documents.
package docx

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/nguyenthenguyen/docx"

	"github.com/custodia-labs/deepdocs/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.FormatExtractor = (*Extractor)(nil)

// Extractor handles DOCX documents.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".docx"}
}

// ExtractText returns the document paragraphs separated by newlines.
func (e *Extractor) ExtractText(_ context.Context, path string, _ int) (driven.ExtractedText, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return driven.ExtractedText{}, fmt.Errorf("open docx: %w", err)
	}
	defer r.Close()

	text, err := parseDocumentXML(r.Editable().GetContent())
	if err != nil {
		return driven.ExtractedText{}, err
	}
	return driven.ExtractedText{Text: text}, nil
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// parseDocumentXML joins the text runs of each paragraph.
func parseDocumentXML(content string) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal([]byte(content), &doc); err != nil {
		return "", fmt.Errorf("parse document.xml: %w", err)
	}

	var result strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			result.WriteString("\n")
		}
		for _, run := range para.Runs {
			for _, text := range run.Text {
				result.WriteString(text.Content)
			}
		}
	}

	return strings.TrimSpace(result.String()), nil
}
