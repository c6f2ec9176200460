// Package anthropic generates answers with the Anthropic messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
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
	DefaultBaseURL = "https://api.anthropic.com"
	DefaultModel   = "claude-3-5-sonnet-latest"
	DefaultTimeout = 120 * time.Second

	// The messages API rejects requests without max_tokens.
	defaultMaxTokens = 1024

	anthropicVersion = "2023-06-01"
)

// Config configures the Anthropic generator. APIKey is required.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService sends each prompt as a single user message.
type LLMService struct {
	api   *transport.Client
	model string
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model         string    `json:"model"`
	Messages      []message `json:"messages"`
	MaxTokens     int       `json:"max_tokens"`
	Temperature   float64   `json:"temperature"`
	TopK          int       `json:"top_k,omitempty"`
	TopP          float64   `json:"top_p,omitempty"`
	StopSequences []string  `json:"stop_sequences,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

// apiError is the body Anthropic returns with non-2xx statuses.
type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewLLMService applies defaults for empty config fields.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	api := transport.NewClient("anthropic", cfg.BaseURL, cfg.Timeout)
	api.SetHeader("x-api-key", cfg.APIKey)
	api.SetHeader("anthropic-version", anthropicVersion)

	return &LLMService{api: api, model: cfg.Model}, nil
}

// Generate returns the concatenated text blocks of the reply.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := messagesRequest{
		Model:         s.model,
		Messages:      []message{{Role: "user", Content: prompt}},
		MaxTokens:     opts.MaxTokens,
		Temperature:   opts.Temperature,
		TopK:          opts.TopK,
		TopP:          opts.TopP,
		StopSequences: opts.StopWords,
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = defaultMaxTokens
	}

	var resp messagesResponse
	if err := s.api.Do(ctx, http.MethodPost, "/v1/messages", req, &resp); err != nil {
		return "", transport.ClassifyGeneration(describe(err))
	}
	if len(resp.Content) == 0 {
		return "", errors.New("anthropic: empty response")
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}

// ModelName returns the configured model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists models, which checks the key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	if err := s.api.Do(ctx, http.MethodGet, "/v1/models", nil, nil); err != nil {
		return transport.ClassifyGeneration(fmt.Errorf("anthropic: ping: %w", describe(err)))
	}
	return nil
}

// Close is a no-op.
func (s *LLMService) Close() error {
	return nil
}

// describe replaces a raw status body with the API's error message when it has one.
func describe(err error) error {
	var status *transport.StatusError
	if !errors.As(err, &status) {
		return err
	}
	var body apiError
	if json.Unmarshal([]byte(status.Body), &body) != nil || body.Error.Message == "" {
		return err
	}
	return fmt.Errorf("anthropic error (status %d): %s: %s", status.Status, body.Error.Type, body.Error.Message)
}
