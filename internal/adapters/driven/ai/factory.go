// Package ai provides factory functions for creating embedding service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/deepdocs/internal/adapters/driven/embedding/lazy"
	"github.com/custodia-labs/deepdocs/internal/adapters/driven/embedding/local"
	ollamaembed "github.com/custodia-labs/deepdocs/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/deepdocs/internal/core/domain"
	"github.com/custodia-labs/deepdocs/internal/core/ports/driven"
	"github.com/custodia-labs/deepdocs/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateEmbeddingService creates the embedding service selected by settings.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: embedding settings missing", domain.ErrInvalidConfiguration)
	}

	switch settings.Provider {
	case domain.EmbeddingProviderLocal:
		return local.NewEmbeddingService(settings.Dimensions), nil

	case domain.EmbeddingProviderOllama:
		return createOllamaEmbedding(settings), nil

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %s",
			domain.ErrInvalidConfiguration, settings.Provider)
	}
}

// CreateLazyEmbeddingService returns a service that builds and pings its
// provider on first use. Construction failures are retried on the next call.
func CreateLazyEmbeddingService(settings domain.EmbeddingSettings) driven.EmbeddingService {
	return lazy.New(func(ctx context.Context) (driven.EmbeddingService, error) {
		done := logger.Timed("initialise embedding model " + modelName(&settings))
		defer done()

		svc, err := CreateEmbeddingService(&settings)
		if err != nil {
			return nil, err
		}

		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := svc.Ping(pingCtx); err != nil {
			svc.Close()
			return nil, fmt.Errorf("service unreachable (%w). Run 'deepdocs settings show' to check the provider", err)
		}
		return svc, nil
	}, modelName(&settings), dimensions(&settings))
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	return nil
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:           settings.BaseURL,
		Model:             settings.Model,
		Dimensions:        dimensions(settings),
		RequestsPerSecond: settings.RequestsPerSecond,
	})
}

func dimensions(settings *domain.EmbeddingSettings) int {
	if settings.Dimensions > 0 {
		return settings.Dimensions
	}
	if settings.Provider == domain.EmbeddingProviderOllama {
		if dims := domain.EmbeddingDimensions()[settings.Model]; dims > 0 {
			return dims
		}
		return ollamaembed.DefaultDimensions
	}
	return local.DefaultDimensions
}

func modelName(settings *domain.EmbeddingSettings) string {
	if settings.Provider == domain.EmbeddingProviderLocal {
		return local.ModelName
	}
	if settings.Model == "" {
		return ollamaembed.DefaultModel
	}
	return settings.Model
}
