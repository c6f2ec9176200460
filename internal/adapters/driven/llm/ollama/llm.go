// Package ollama generates answers with a local Ollama server.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/lectern/internal/adapters/driven/transport"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

// Defaults applied by NewLLMService.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "mistral"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig configures the Ollama generator.
type LLMConfig struct {
	BaseURL string
	Model   string

	// Timeout is a hard per-request ceiling. The ask timeout that triggers
	// the keyword fallback arrives through the request context.
	Timeout time.Duration
}

// LLMService calls /api/generate with streaming disabled.
type LLMService struct {
	api     *transport.Client
	model   string
	timeout time.Duration
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

// generateOptions always carries temperature; zero is a real setting.
type generateOptions struct {
	Temperature float64  `json:"temperature"`
	NumPredict  int      `json:"num_predict,omitempty"`
	TopK        int      `json:"top_k,omitempty"`
	TopP        float64  `json:"top_p,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// NewLLMService applies defaults for empty config fields.
func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &LLMService{
		api:     transport.NewClient("ollama", cfg.BaseURL, cfg.Timeout),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

// Generate returns the full completion for prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := generateRequest{
		Model:  s.model,
		Prompt: prompt,
		Options: generateOptions{
			Temperature: opts.Temperature,
			NumPredict:  opts.MaxTokens,
			TopK:        opts.TopK,
			TopP:        opts.TopP,
			Stop:        opts.StopWords,
		},
	}

	var resp generateResponse
	if err := s.api.Do(ctx, http.MethodPost, "/api/generate", req, &resp); err != nil {
		return "", transport.ClassifyGeneration(err)
	}
	return resp.Response, nil
}

// ModelName returns the configured model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists pulled models and checks the configured one is among them.
// No inference is run.
func (s *LLMService) Ping(ctx context.Context) error {
	var tags tagsResponse
	if err := s.api.Do(ctx, http.MethodGet, "/api/tags", nil, &tags); err != nil {
		return transport.ClassifyGeneration(fmt.Errorf("ollama: ping: %w", err))
	}
	for _, m := range tags.Models {
		if sameModel(m.Name, s.model) {
			return nil
		}
	}
	return fmt.Errorf("ollama: model %s not found (run: ollama pull %s)", s.model, s.model)
}

// Close is a no-op.
func (s *LLMService) Close() error {
	return nil
}

// sameModel treats an untagged name as ":latest".
func sameModel(installed, wanted string) bool {
	if !strings.Contains(wanted, ":") {
		wanted += ":latest"
	}
	if !strings.Contains(installed, ":") {
		installed += ":latest"
	}
	return installed == wanted
}
