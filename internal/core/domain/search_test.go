package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchOptions_Limit(t *testing.T) {
	assert.Equal(t, DefaultTopK, SearchOptions{}.Limit())
	assert.Equal(t, DefaultTopK, SearchOptions{TopK: -3}.Limit())
	assert.Equal(t, 12, SearchOptions{TopK: 12}.Limit())
}

func TestExtraction_Constructors(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		e := Extracted("hello")
		assert.Equal(t, ExtractionExtracted, e.Status)
		assert.True(t, e.HasText())
	})

	t.Run("blank text is empty", func(t *testing.T) {
		e := Extracted(" \n\t ")
		assert.Equal(t, ExtractionEmpty, e.Status)
		assert.Empty(t, e.Text)
		assert.False(t, e.HasText())
	})

	t.Run("failed", func(t *testing.T) {
		e := FailedExtraction(ErrExtractionFailed)
		assert.Equal(t, ExtractionFailed, e.Status)
		assert.ErrorIs(t, e.Err, ErrExtractionFailed)
		assert.False(t, e.HasText())
	})

	t.Run("unsupported", func(t *testing.T) {
		e := UnsupportedExtraction()
		assert.Equal(t, ExtractionUnsupported, e.Status)
		assert.ErrorIs(t, e.Err, ErrUnsupportedType)
	})
}

func TestExtractionStatus_String(t *testing.T) {
	assert.Equal(t, "extracted", ExtractionExtracted.String())
	assert.Equal(t, "empty", ExtractionEmpty.String())
	assert.Equal(t, "unsupported", ExtractionUnsupported.String())
	assert.Equal(t, "failed", ExtractionFailed.String())
	assert.Equal(t, "unknown", ExtractionStatus(42).String())
}
