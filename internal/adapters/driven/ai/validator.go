package ai

import (
	"context"
	"time"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

// DefaultValidateTimeout bounds a single provider ping.
const DefaultValidateTimeout = 5 * time.Second

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks provider settings by building a throwaway client
// and pinging it. Unconfigured settings pass; there is nothing to reach.
type ConfigValidator struct {
	timeout time.Duration
}

// NewConfigValidator creates a validator with DefaultValidateTimeout.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{timeout: DefaultValidateTimeout}
}

// WithTimeout returns a copy that waits at most d per ping.
func (v *ConfigValidator) WithTimeout(d time.Duration) *ConfigValidator {
	return &ConfigValidator{timeout: d}
}

// ValidateEmbedding pings the embedding provider and checks its model is available.
func (v *ConfigValidator) ValidateEmbedding(settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	return v.ping(svc.Ping)
}

// ValidateLLM pings the generation provider and checks its model is available.
func (v *ConfigValidator) ValidateLLM(settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	return v.ping(svc.Ping)
}

func (v *ConfigValidator) ping(fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()
	return fn(ctx)
}
