package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
	"github.com/custodia-labs/lectern/internal/core/ports/driving"
)

// Ensure HealthService implements the interface.
var _ driving.HealthService = (*HealthService)(nil)

// probeTimeout bounds each individual probe.
const probeTimeout = 5 * time.Second

// HealthService probes the embedding service, the LLM and the stores.
type HealthService struct {
	embedding  driven.EmbeddingService
	llm        driven.LLMService
	docStore   driven.DocumentStore
	storeLabel string
}

// NewHealthService creates a new health service.
// Nil services are reported as not configured.
func NewHealthService(
	embedding driven.EmbeddingService,
	llm driven.LLMService,
	docStore driven.DocumentStore,
	storeLabel string,
) *HealthService {
	return &HealthService{
		embedding:  embedding,
		llm:        llm,
		docStore:   docStore,
		storeLabel: storeLabel,
	}
}

// Check probes every collaborator in a fixed order: embedding, llm, store.
func (s *HealthService) Check(ctx context.Context) []domain.HealthCheck {
	checks := make([]domain.HealthCheck, 0, 3)

	if s.embedding == nil {
		checks = append(checks, notConfigured("embedding"))
	} else {
		check := s.probe(ctx, "embedding", s.embedding.ModelName(), s.embedding.Ping)
		if check.OK {
			check.Detail = fmt.Sprintf("%d dimensions", s.embedding.Dimensions())
		}
		checks = append(checks, check)
	}

	if s.llm == nil {
		checks = append(checks, notConfigured("llm"))
	} else {
		checks = append(checks, s.probe(ctx, "llm", s.llm.ModelName(), s.llm.Ping))
	}

	if s.docStore == nil {
		checks = append(checks, notConfigured("store"))
	} else {
		check := s.probe(ctx, "store", s.storeLabel, func(ctx context.Context) error {
			_, err := s.docStore.ListDocuments(ctx)
			return err
		})
		checks = append(checks, check)
	}

	return checks
}

func (s *HealthService) probe(
	ctx context.Context, name, target string, ping func(context.Context) error,
) domain.HealthCheck {
	pctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	start := time.Now()
	err := ping(pctx)
	check := domain.HealthCheck{
		Name:    name,
		Target:  target,
		OK:      err == nil,
		Latency: time.Since(start),
	}
	if err != nil {
		check.Detail = err.Error()
		check.Hint = hintFor(name, err)
	} else {
		check.Detail = "ok"
	}
	return check
}

func notConfigured(name string) domain.HealthCheck {
	return domain.HealthCheck{
		Name:   name,
		Detail: "not configured",
		Hint:   "run 'lectern settings show' to review the configuration",
	}
}

func hintFor(name string, err error) string {
	switch {
	case errors.Is(err, domain.ErrGenerationUnavailable):
		return "start the model server (for Ollama: ollama serve)"
	case name == "embedding" || name == "llm":
		return "check the provider URL and that the model is pulled (for Ollama: ollama pull <model>)"
	default:
		return "check the data directory permissions"
	}
}
