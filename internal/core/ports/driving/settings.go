package driving

import (
	"context"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
)

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, including environment overrides.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Set updates a single setting by dotted key (e.g. "chunking.size").
	Set(key, value string) error

	// Keys returns the recognised setting keys in display order.
	Keys() []string

	// UnknownKeys returns stored keys that no setting reads, typically typos
	// in a hand-edited config file.
	UnknownKeys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// Validate checks the current settings.
	Validate() error

	// ValidateEmbeddingConfig pings the configured embedding provider.
	ValidateEmbeddingConfig(ctx context.Context) error
}
