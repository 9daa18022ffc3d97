package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
	"github.com/custodia-labs/deepdocs/internal/core/ports/driven"
)

func TestNewConfigValidator(t *testing.T) {
	validator := NewConfigValidator()

	require.NotNil(t, validator)
}

func TestConfigValidator_ImplementsInterface(t *testing.T) {
	var _ driven.AIConfigValidator = (*ConfigValidator)(nil)
}

func TestConfigValidator_ValidateEmbedding(t *testing.T) {
	ctx := context.Background()
	validator := NewConfigValidator()

	t.Run("nil config", func(t *testing.T) {
		err := validator.ValidateEmbedding(ctx, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
	})

	t.Run("local provider", func(t *testing.T) {
		err := validator.ValidateEmbedding(ctx, &domain.EmbeddingSettings{
			Provider:   domain.EmbeddingProviderLocal,
			Dimensions: 128,
		})
		assert.NoError(t, err)
	})

	t.Run("ollama reachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"models":[{"name":"all-minilm:latest"}]}`))
		}))
		defer srv.Close()

		err := validator.ValidateEmbedding(ctx, &domain.EmbeddingSettings{
			Provider: domain.EmbeddingProviderOllama,
			BaseURL:  srv.URL,
			Model:    "all-minilm",
		})
		assert.NoError(t, err)
	})

	t.Run("ollama model not pulled", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"models":[]}`))
		}))
		defer srv.Close()

		err := validator.ValidateEmbedding(ctx, &domain.EmbeddingSettings{
			Provider: domain.EmbeddingProviderOllama,
			BaseURL:  srv.URL,
			Model:    "nomic-embed-text",
		})
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
		assert.ErrorContains(t, err, "ollama pull nomic-embed-text")
	})

	t.Run("ollama unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		err := validator.ValidateEmbedding(ctx, &domain.EmbeddingSettings{
			Provider: domain.EmbeddingProviderOllama,
			BaseURL:  srv.URL,
		})
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})
}
