package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmbeddingProvider(t *testing.T) {
	assert.True(t, EmbeddingProviderLocal.IsValid())
	assert.True(t, EmbeddingProviderOllama.IsValid())
	assert.False(t, EmbeddingProvider("openai").IsValid())

	assert.Equal(t, "local", EmbeddingProviderLocal.String())
	assert.Equal(t, "Ollama (local server)", EmbeddingProviderOllama.Description())
	assert.Equal(t, "Unknown", EmbeddingProvider("x").Description())
	assert.Len(t, AllEmbeddingProviders(), 2)
	assert.True(t, EmbeddingProviderOllama.IsRemote())
	assert.False(t, EmbeddingProviderLocal.IsRemote())
}

func TestChunkingSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ChunkingSettings
		wantErr bool
	}{
		{"defaults", ChunkingSettings{Size: 1000, Overlap: 100}, false},
		{"zero overlap", ChunkingSettings{Size: 10, Overlap: 0}, false},
		{"overlap equals size", ChunkingSettings{Size: 10, Overlap: 10}, true},
		{"overlap exceeds size", ChunkingSettings{Size: 10, Overlap: 20}, true},
		{"negative overlap", ChunkingSettings{Size: 10, Overlap: -1}, true},
		{"zero size", ChunkingSettings{Size: 0, Overlap: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfiguration)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.NoError(t, s.Validate())
	assert.Equal(t, EmbeddingProviderLocal, s.Embedding.Provider)
	assert.Equal(t, 1000, s.Chunking.Size)
	assert.Equal(t, 100, s.Chunking.Overlap)
	assert.Equal(t, 20000, s.Extraction.MaxChars)
	assert.Equal(t, 50, s.Extraction.MinTextChars)
	assert.Equal(t, 5, s.Search.TopK)
}

func TestAppSettings_Validate(t *testing.T) {
	s := DefaultAppSettings()
	s.Embedding.Provider = "unknown"
	assert.ErrorIs(t, s.Validate(), ErrInvalidConfiguration)

	s = DefaultAppSettings()
	s.Chunking.Overlap = s.Chunking.Size
	assert.ErrorIs(t, s.Validate(), ErrInvalidConfiguration)

	s = DefaultAppSettings()
	s.Extraction.MaxChars = 0
	assert.ErrorIs(t, s.Validate(), ErrInvalidConfiguration)

	s = DefaultAppSettings()
	s.Embedding.Dimensions = 0
	assert.ErrorIs(t, s.Validate(), ErrInvalidConfiguration)
}
