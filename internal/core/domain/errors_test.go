package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrInvalidConfiguration", ErrInvalidConfiguration},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrExtractionFailed", ErrExtractionFailed},
		{"ErrEmbeddingFailed", ErrEmbeddingFailed},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrOCRToolNotFound", ErrOCRToolNotFound},
		{"ErrSequenceConsumed", ErrSequenceConsumed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_Wrapping(t *testing.T) {
	wrapped := fmt.Errorf("get document 7: %w", ErrNotFound)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrInvalidInput))
}

func TestErrors_Distinct(t *testing.T) {
	assert.False(t, errors.Is(ErrEmbeddingFailed, ErrEmbeddingUnavailable))
	assert.False(t, errors.Is(ErrInvalidConfiguration, ErrInvalidInput))
}
