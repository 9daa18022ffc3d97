// Package local provides an offline embedding service based on feature hashing.
//
// Each lowercase word unigram and adjacent bigram is hashed into one of
// Dimensions buckets with a sign taken from a second hash bit. The bucket
// counts are L2-normalised, so cosine similarity reflects shared vocabulary.
// No model download or network access is required.
package local

import (
	"context"
	"strings"
	"unicode"

	"github.com/minio/highwayhash"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
	"github.com/custodia-labs/deepdocs/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	// ModelName identifies vectors produced by this service.
	ModelName = "feature-hash"

	// DefaultDimensions matches the default Ollama model so switching
	// providers does not change the vector size.
	DefaultDimensions = 384
)

var hashKey = []byte("deepdocs-feature-hash-v1-32bytes")

// EmbeddingService generates embeddings by hashing terms into buckets.
type EmbeddingService struct {
	dimensions int
}

// NewEmbeddingService creates a feature-hashing embedder.
// Non-positive dimensions fall back to DefaultDimensions.
func NewEmbeddingService(dimensions int) *EmbeddingService {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &EmbeddingService{dimensions: dimensions}
}

// Embed returns a unit-length vector for text, or nil for blank text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	terms := tokenize(text)
	if len(terms) == 0 {
		return nil, nil
	}

	vec := make([]float32, s.dimensions)
	for i, term := range terms {
		s.add(vec, term)
		if i > 0 {
			s.add(vec, terms[i-1]+" "+term)
		}
	}
	return domain.Normalize(vec), nil
}

func (s *EmbeddingService) add(vec []float32, feature string) {
	h := highwayhash.Sum64([]byte(feature), hashKey)
	bucket := int(h % uint64(s.dimensions))
	if (h>>63)&1 == 1 {
		vec[bucket]--
		return
	}
	vec[bucket]++
}

// tokenize splits text into lowercase runs of letters and digits.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return ModelName
}

// Ping always succeeds; the model is in-process.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
