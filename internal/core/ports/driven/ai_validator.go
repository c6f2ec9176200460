package driven

import "github.com/custodia-labs/lectern/internal/core/domain"

// AIConfigValidator checks provider settings before they are saved or used.
// Both methods return nil for settings that are not configured.
type AIConfigValidator interface {
	// ValidateEmbedding reports whether the embedding provider answers
	// and serves the configured model.
	ValidateEmbedding(settings *domain.EmbeddingSettings) error

	// ValidateLLM reports whether the generation provider answers
	// and serves the configured model.
	ValidateLLM(settings *domain.LLMSettings) error
}
