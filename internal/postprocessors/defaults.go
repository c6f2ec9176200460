// Package postprocessors builds document post-processors from configuration.
package postprocessors

import (
	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
	"github.com/custodia-labs/lectern/internal/postprocessors/chunker"
)

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register(chunker.Name, buildChunker)
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - max_chars (int): Hard upper bound on chunk length (default: 1200)
//   - min_chars (int): Soft lower bound on chunk length (default: 400)
//   - overlap_ratio (float): Fraction of max_chars carried across boundaries (default: 0.1)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if cfg != nil {
		if n := getIntFromConfig(cfg, domain.ChunkKeyMaxChars); n > 0 {
			opts = append(opts, chunker.WithMaxChars(n))
		}
		if n := getIntFromConfig(cfg, domain.ChunkKeyMinChars); n > 0 {
			opts = append(opts, chunker.WithMinChars(n))
		}
		if r, ok := getFloatFromConfig(cfg, domain.ChunkKeyOverlapRatio); ok {
			opts = append(opts, chunker.WithOverlapRatio(r))
		}
	}

	return chunker.New(opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// getFloatFromConfig extracts a float from generic config map.
func getFloatFromConfig(cfg map[string]any, key string) (float64, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
