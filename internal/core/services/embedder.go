package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
	"github.com/custodia-labs/lectern/internal/logger"
)

// DefaultEmbeddingConcurrency is the number of in-flight embedding calls per batch.
const DefaultEmbeddingConcurrency = 4

// BatchEmbedder embeds many texts with one remote call per text.
// Calls run concurrently up to a limit and may be throttled by a token
// bucket; results are placed by input index, never by completion order.
type BatchEmbedder struct {
	service     driven.EmbeddingService
	concurrency int
	limiter     *rate.Limiter
	metrics     driven.PipelineMetrics
}

// NewBatchEmbedder creates a batch embedder.
// A concurrency below 1 uses DefaultEmbeddingConcurrency.
// A requestsPerSecond of zero or less disables throttling.
func NewBatchEmbedder(service driven.EmbeddingService, concurrency int, requestsPerSecond float64) *BatchEmbedder {
	if concurrency < 1 {
		concurrency = DefaultEmbeddingConcurrency
	}

	e := &BatchEmbedder{
		service:     service,
		concurrency: concurrency,
	}
	if requestsPerSecond > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), concurrency)
	}
	return e
}

// SetMetrics sets the recorder for embedding call latency.
func (e *BatchEmbedder) SetMetrics(m driven.PipelineMetrics) {
	e.metrics = m
}

// EmbedAll returns one vector per text, in input order.
// Any failed call, empty vector, or dimension mismatch aborts the batch
// with an error wrapping domain.ErrEmbeddingService.
func (e *BatchEmbedder) EmbedAll(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	if len(texts) == 0 {
		return vectors, nil
	}
	if e.service == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	logger.Debug("Embedding %d texts (concurrency=%d, model=%s)", len(texts), e.concurrency, e.service.ModelName())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, text := range texts {
		g.Go(func() error {
			if e.limiter != nil {
				if err := e.limiter.Wait(gctx); err != nil {
					return fmt.Errorf("embed text %d: %w: %w", i, domain.ErrEmbeddingService, err)
				}
			}

			start := time.Now()
			vec, err := e.service.Embed(gctx, text)
			if e.metrics != nil {
				e.metrics.ObserveEmbedding(time.Since(start), err)
			}
			if err != nil {
				return fmt.Errorf("embed text %d: %w", i, asEmbeddingError(err))
			}
			if len(vec) == 0 {
				return fmt.Errorf("embed text %d: %w: empty vector", i, domain.ErrEmbeddingService)
			}

			vectors[i] = vec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Warn("Embedding batch failed: %v", err)
		return nil, err
	}

	dims := len(vectors[0])
	for i, vec := range vectors {
		if len(vec) != dims {
			return nil, fmt.Errorf("embed text %d: %w: got %d dimensions, want %d",
				i, domain.ErrEmbeddingService, len(vec), dims)
		}
	}

	return vectors, nil
}

// EmbedQuery embeds a single question as a one-element batch.
func (e *BatchEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedAll(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func asEmbeddingError(err error) error {
	if errors.Is(err, domain.ErrEmbeddingService) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrEmbeddingService, err)
}
