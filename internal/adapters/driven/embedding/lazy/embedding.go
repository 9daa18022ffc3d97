// Package lazy defers construction of an embedding service until first use.
package lazy

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
	"github.com/custodia-labs/deepdocs/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Factory builds the underlying embedding service.
type Factory func(ctx context.Context) (driven.EmbeddingService, error)

// EmbeddingService constructs its delegate at most once. A failed
// construction is not cached; the next call retries.
type EmbeddingService struct {
	factory    Factory
	modelName  string
	dimensions int

	mu       sync.Mutex
	delegate driven.EmbeddingService
}

// New returns a lazy service. modelName and dimensions are reported
// before the delegate exists.
func New(factory Factory, modelName string, dimensions int) *EmbeddingService {
	return &EmbeddingService{
		factory:    factory,
		modelName:  modelName,
		dimensions: dimensions,
	}
}

func (s *EmbeddingService) get(ctx context.Context) (driven.EmbeddingService, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.delegate != nil {
		return s.delegate, nil
	}
	svc, err := s.factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	s.delegate = svc
	return svc, nil
}

// Embed initialises the delegate if needed and forwards the call.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	svc, err := s.get(ctx)
	if err != nil {
		return nil, err
	}
	return svc.Embed(ctx, text)
}

// Dimensions returns the delegate's size once initialised.
func (s *EmbeddingService) Dimensions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.delegate != nil {
		return s.delegate.Dimensions()
	}
	return s.dimensions
}

// ModelName returns the delegate's model once initialised.
func (s *EmbeddingService) ModelName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.delegate != nil {
		return s.delegate.ModelName()
	}
	return s.modelName
}

// Ping initialises the delegate and pings it.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	svc, err := s.get(ctx)
	if err != nil {
		return err
	}
	return svc.Ping(ctx)
}

// Initialized reports whether the delegate has been built.
func (s *EmbeddingService) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delegate != nil
}

// Close closes the delegate if it was built.
func (s *EmbeddingService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.delegate == nil {
		return nil
	}
	err := s.delegate.Close()
	s.delegate = nil
	return err
}
