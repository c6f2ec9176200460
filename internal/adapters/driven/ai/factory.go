// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"fmt"

	ollamaembed "github.com/custodia-labs/lectern/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/lectern/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/lectern/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/lectern/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/lectern/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

// settingsHint is appended to configuration errors.
const settingsHint = "Run 'lectern settings show' to review the configuration"

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService // Nil when no generator is configured.
	Warnings         []string          // Non-fatal configuration issues.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Init builds both services from settings without contacting them.
// Embeddings are required; a missing or broken LLM configuration is
// reported as a warning and answers fall back to keyword search.
// Reachability is checked lazily by the first call, or by 'lectern doctor'.
func Init(settings *domain.AppSettings) (*InitResult, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: no settings", domain.ErrEmbeddingUnavailable)
	}

	embedder, err := CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrEmbeddingUnavailable, err, settingsHint)
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: provider %q is not configured. %s",
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider, settingsHint)
	}

	result := &InitResult{EmbeddingService: embedder}

	llm, err := CreateLLMService(&settings.LLM)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf("LLM disabled: %v", err))
	case llm == nil:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("LLM provider %q is not configured, answers use keyword search", settings.LLM.Provider))
	default:
		result.LLMService = llm
	}

	return result, nil
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, nil
	}
	if settings.Provider == domain.AIProviderAnthropic {
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil
	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)
	default:
		return nil, fmt.Errorf("%w: embedding provider %s", domain.ErrUnsupportedType, settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaLLM(settings), nil
	case domain.AIProviderOpenAI:
		return createOpenAILLM(settings)
	case domain.AIProviderAnthropic:
		return createAnthropicLLM(settings)
	default:
		return nil, fmt.Errorf("%w: LLM provider %s", domain.ErrUnsupportedType, settings.Provider)
	}
}

func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: domain.EmbeddingDimensions()[settings.Model],
	})
}

func createOllamaLLM(settings *domain.LLMSettings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

func createAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}
