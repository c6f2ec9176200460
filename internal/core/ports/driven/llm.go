package driven

import "context"

// LLMService completes a grounded prompt. Implementations wrap
// domain.ErrGenerationTimeout on deadlines and network timeouts, and
// domain.ErrGenerationUnavailable when nothing is listening, so the ask
// service can pick the keyword fallback.
type LLMService interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	ModelName() string

	// Ping checks credentials and the model without running inference.
	Ping(ctx context.Context) error

	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens caps the completion. Zero leaves the provider default.
	MaxTokens int

	// Temperature is always sent; zero is a real setting.
	Temperature float64

	// TopK limits sampling to the K most likely tokens. Zero leaves the provider default.
	TopK int

	// TopP is the nucleus sampling threshold. Zero leaves the provider default.
	TopP float64

	// StopWords end generation when produced.
	StopWords []string
}
