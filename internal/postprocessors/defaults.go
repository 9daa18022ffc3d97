package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
	"github.com/custodia-labs/deepdocs/internal/core/ports/driven"
	"github.com/custodia-labs/deepdocs/internal/postprocessors/chunker"
)

// ChunkerName is the registry name of the sliding-window chunker.
const ChunkerName = "chunker"

// RegisterDefaults registers the built-in processors.
func RegisterDefaults(r *Registry) {
	r.Register(ChunkerName, buildChunker, "size", "overlap")
}

// ChunkerConfig converts chunking settings into builder config.
func ChunkerConfig(s domain.ChunkingSettings) map[string]any {
	return map[string]any{"size": s.Size, "overlap": s.Overlap}
}

// buildChunker reads "size" and "overlap"; either may be absent, in which
// case the chunker default applies.
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option
	for k, v := range cfg {
		n, err := toInt(v)
		if err != nil {
			return nil, fmt.Errorf("%w: chunker %s: %v", domain.ErrInvalidConfiguration, k, err)
		}
		switch k {
		case "size":
			opts = append(opts, chunker.WithChunkSize(n))
		case "overlap":
			opts = append(opts, chunker.WithOverlap(n))
		}
	}
	return chunker.New(opts...)
}

// toInt accepts the numeric types TOML and JSON decoders produce.
func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("%v is not a whole number", n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
