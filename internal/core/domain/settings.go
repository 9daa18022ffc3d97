package domain

import "fmt"

const unknownDescription = "Unknown"

// EmbeddingProvider identifies the model backend used for embeddings.
type EmbeddingProvider string

// Available embedding providers.
const (
	// EmbeddingProviderLocal is the built-in offline feature-hashing model.
	EmbeddingProviderLocal EmbeddingProvider = "local"

	// EmbeddingProviderOllama is a local Ollama instance.
	EmbeddingProviderOllama EmbeddingProvider = "ollama"
)

// IsValid returns true if the provider is recognised.
func (p EmbeddingProvider) IsValid() bool {
	switch p {
	case EmbeddingProviderLocal, EmbeddingProviderOllama:
		return true
	default:
		return false
	}
}

// IsRemote reports whether the provider talks to a model server.
func (p EmbeddingProvider) IsRemote() bool {
	return p == EmbeddingProviderOllama
}

// String returns the string representation.
func (p EmbeddingProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p EmbeddingProvider) Description() string {
	switch p {
	case EmbeddingProviderLocal:
		return "Local (feature hashing, offline)"
	case EmbeddingProviderOllama:
		return "Ollama (local server)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding backend.
	Provider EmbeddingProvider

	// Model is the embedding model name (Ollama only).
	Model string

	// BaseURL is the API endpoint (Ollama only).
	BaseURL string

	// Dimensions is the embedding vector size.
	Dimensions int

	// RequestsPerSecond throttles calls to a model server. 0 disables throttling.
	RequestsPerSecond float64
}

// ChunkingSettings holds chunker parameters.
type ChunkingSettings struct {
	// Size is the window length in characters.
	Size int

	// Overlap is the number of characters shared by consecutive chunks.
	Overlap int
}

// Validate rejects windows that would not advance.
func (c ChunkingSettings) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfiguration, c.Size)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("%w: chunk overlap must not be negative, got %d", ErrInvalidConfiguration, c.Overlap)
	}
	if c.Overlap >= c.Size {
		return fmt.Errorf("%w: chunk overlap %d must be smaller than size %d",
			ErrInvalidConfiguration, c.Overlap, c.Size)
	}
	return nil
}

// ExtractionSettings holds text extraction limits.
type ExtractionSettings struct {
	// MaxChars caps extracted text length in characters.
	MaxChars int

	// MinTextChars is the text-layer length below which a PDF is treated
	// as scanned and sent to OCR.
	MinTextChars int

	// OCREnabled enables the rasterize-then-recognise fallback.
	OCREnabled bool

	// OCRLanguage is the recogniser language code.
	OCRLanguage string
}

// SearchSettings holds search behaviour configuration.
type SearchSettings struct {
	// TopK is the default number of results.
	TopK int
}

// IndexingSettings holds batch indexing configuration.
type IndexingSettings struct {
	// Workers bounds concurrent document indexing in batch runs.
	Workers int
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding  EmbeddingSettings
	Chunking   ChunkingSettings
	Extraction ExtractionSettings
	Search     SearchSettings
	Indexing   IndexingSettings
}

// Validate checks that the settings can be used to build the pipeline.
func (s AppSettings) Validate() error {
	if !s.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", ErrInvalidConfiguration, s.Embedding.Provider)
	}
	if s.Embedding.Dimensions <= 0 {
		return fmt.Errorf("%w: embedding dimensions must be positive", ErrInvalidConfiguration)
	}
	if err := s.Chunking.Validate(); err != nil {
		return err
	}
	if s.Extraction.MaxChars <= 0 {
		return fmt.Errorf("%w: extraction max_chars must be positive", ErrInvalidConfiguration)
	}
	return nil
}

// DefaultAppSettings returns settings with sensible defaults.
// The local embedder needs no external service, so the tool works offline.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider:   EmbeddingProviderLocal,
			Model:      DefaultEmbeddingModels()[EmbeddingProviderOllama],
			BaseURL:    "http://localhost:11434",
			Dimensions: 384, // all-MiniLM-L6-v2 sized vectors
		},
		Chunking: ChunkingSettings{
			Size:    1000,
			Overlap: 100,
		},
		Extraction: ExtractionSettings{
			MaxChars:     20000,
			MinTextChars: 50,
			OCREnabled:   true,
			OCRLanguage:  "eng",
		},
		Search: SearchSettings{
			TopK: DefaultTopK,
		},
		Indexing: IndexingSettings{
			Workers: 2,
		},
	}
}

// AllEmbeddingProviders returns the supported providers.
func AllEmbeddingProviders() []EmbeddingProvider {
	return []EmbeddingProvider{
		EmbeddingProviderLocal,
		EmbeddingProviderOllama,
	}
}

// DefaultEmbeddingModels returns default models for each provider.
func DefaultEmbeddingModels() map[EmbeddingProvider]string {
	return map[EmbeddingProvider]string{
		EmbeddingProviderLocal:  "feature-hash",
		EmbeddingProviderOllama: "all-minilm",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
	}
}
