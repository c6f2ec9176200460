// Package ollama embeds text with a local Ollama server.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/lectern/internal/adapters/driven/transport"
	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Defaults applied by NewEmbeddingService.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultModel      = "nomic-embed-text"
	DefaultTimeout    = 30 * time.Second
	DefaultDimensions = 768
)

// Config configures the Ollama embedder. Zero fields take the defaults above.
type Config struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Dimensions int
}

// EmbeddingService calls /api/embeddings, one text per request.
type EmbeddingService struct {
	api        *transport.Client
	model      string
	dimensions int
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// NewEmbeddingService applies defaults for empty config fields.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}

	return &EmbeddingService{
		api:        transport.NewClient("ollama", cfg.BaseURL, cfg.Timeout),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

// Embed returns the vector for text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	var resp embedResponse
	err := s.api.Do(ctx, http.MethodPost, "/api/embeddings", embedRequest{Model: s.model, Prompt: text}, &resp)
	if err != nil {
		return nil, transport.ClassifyEmbedding(err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty vector from model %s", domain.ErrEmbeddingService, s.model)
	}

	vec := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}

// EmbedBatch embeds texts sequentially. Concurrency is the caller's concern.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for i := range texts {
		vec, err := s.Embed(ctx, texts[i])
		if err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
		out = append(out, vec)
	}
	return out, nil
}

// Dimensions returns the configured vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the configured model.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping checks that the model has been pulled. No embedding is computed.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	var tags tagsResponse
	if err := s.api.Do(ctx, http.MethodGet, "/api/tags", nil, &tags); err != nil {
		return transport.ClassifyGeneration(fmt.Errorf("ollama: ping: %w", err))
	}
	for _, m := range tags.Models {
		if modelMatches(m.Name, s.model) {
			return nil
		}
	}
	return fmt.Errorf("ollama: model %s not found (run: ollama pull %s)", s.model, s.model)
}

// Close is a no-op.
func (s *EmbeddingService) Close() error {
	return nil
}

// modelMatches accepts an exact name, or "name:latest" for an untagged name.
func modelMatches(installed, wanted string) bool {
	if installed == wanted {
		return true
	}
	return !strings.Contains(wanted, ":") && installed == wanted+":latest"
}
