package domain

import "strings"

// ExtractionStatus classifies the outcome of text extraction.
type ExtractionStatus int

const (
	// ExtractionExtracted means non-blank text was produced.
	ExtractionExtracted ExtractionStatus = iota

	// ExtractionEmpty means the file was read but held no text.
	ExtractionEmpty

	// ExtractionUnsupported means no extractor handles the file type.
	ExtractionUnsupported

	// ExtractionFailed means the file could not be read or parsed.
	ExtractionFailed
)

// String returns the string representation.
func (s ExtractionStatus) String() string {
	switch s {
	case ExtractionExtracted:
		return "extracted"
	case ExtractionEmpty:
		return "empty"
	case ExtractionUnsupported:
		return "unsupported"
	case ExtractionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Extraction is the typed outcome of extracting text from a file.
// Callers can tell "no content" apart from "extraction crashed";
// both leave Text empty.
type Extraction struct {
	// Text is the extracted, truncated text.
	Text string

	// Status classifies the outcome.
	Status ExtractionStatus

	// OCR is set when the text came from the recognition fallback.
	OCR bool

	// Truncated is set when Text was cut to the configured maximum.
	Truncated bool

	// Err holds the cause when Status is ExtractionFailed.
	Err error
}

// HasText reports whether there is anything to index.
func (e Extraction) HasText() bool {
	return e.Status == ExtractionExtracted && e.Text != ""
}

// Extracted builds a successful outcome, downgrading blank text to Empty.
func Extracted(text string) Extraction {
	if strings.TrimSpace(text) == "" {
		return Extraction{Status: ExtractionEmpty}
	}
	return Extraction{Text: text, Status: ExtractionExtracted}
}

// FailedExtraction builds a failed outcome.
func FailedExtraction(err error) Extraction {
	return Extraction{Status: ExtractionFailed, Err: err}
}

// UnsupportedExtraction builds an unsupported outcome.
func UnsupportedExtraction() Extraction {
	return Extraction{Status: ExtractionUnsupported, Err: ErrUnsupportedType}
}
