package driven

import "context"

// EmbeddingService maps text to a fixed-size unit vector. Query and
// chunk vectors must come from the same service for scores to mean
// anything; Dimensions and ModelName identify it.
type EmbeddingService interface {
	// Embed returns a normalised vector. Blank text yields (nil, nil).
	Embed(ctx context.Context, text string) ([]float32, error)

	Dimensions() int
	ModelName() string

	// Ping reports whether Embed can be expected to succeed, e.g. the
	// model server is reachable and the model is available.
	Ping(ctx context.Context) error

	Close() error
}
