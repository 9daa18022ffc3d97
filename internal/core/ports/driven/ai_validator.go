package driven

import (
	"context"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
)

// AIConfigValidator validates embedding provider configurations by
// building the provider and testing that it answers.
type AIConfigValidator interface {
	// ValidateEmbedding returns nil if the configured provider is usable.
	ValidateEmbedding(ctx context.Context, config *domain.EmbeddingSettings) error
}
