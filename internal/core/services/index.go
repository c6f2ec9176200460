package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
	"github.com/custodia-labs/lectern/internal/core/ports/driving"
	"github.com/custodia-labs/lectern/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// IndexService chunks, embeds and stores documents.
// Reindexes of the same document are serialised; different documents
// proceed concurrently.
type IndexService struct {
	docStore   driven.DocumentStore
	chunkStore driven.ChunkStore
	processors driven.PostProcessorFactory
	embedder   *BatchEmbedder
	defaults   domain.ChunkOptions
	metrics    driven.PipelineMetrics
	locks      keyedMutex
}

// NewIndexService creates a new index service.
func NewIndexService(
	docStore driven.DocumentStore,
	chunkStore driven.ChunkStore,
	processors driven.PostProcessorFactory,
	embedder *BatchEmbedder,
) *IndexService {
	return &IndexService{
		docStore:   docStore,
		chunkStore: chunkStore,
		processors: processors,
		embedder:   embedder,
		defaults:   domain.DefaultChunkOptions(),
	}
}

// SetDefaults sets the chunk options used for fields a request leaves unset.
func (s *IndexService) SetDefaults(opts domain.ChunkOptions) {
	s.defaults = opts.WithDefaults()
}

// SetMetrics sets the recorder for reindex outcomes.
func (s *IndexService) SetMetrics(m driven.PipelineMetrics) {
	s.metrics = m
}

// Reindex chunks the document, embeds every chunk and replaces the stored set.
// Nothing is written unless every embedding succeeds.
func (s *IndexService) Reindex(ctx context.Context, documentID string, opts domain.ChunkOptions) (int, error) {
	unlock := s.locks.Lock(documentID)
	defer unlock()

	start := time.Now()
	n, err := s.reindex(ctx, documentID, opts)
	if s.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		s.metrics.ObserveReindex(outcome, n, time.Since(start))
	}
	return n, err
}

func (s *IndexService) reindex(ctx context.Context, documentID string, opts domain.ChunkOptions) (int, error) {
	logger.Section("Reindex")
	logger.Debug("Document: %s", documentID)

	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("get document: %w", err)
	}

	opts = opts.Merge(s.defaults).WithDefaults()
	logger.Debug("Chunk options: max=%d min=%d overlap=%.2f", opts.MaxChars, opts.MinChars, opts.OverlapRatio)

	chunker, err := s.processors.Build(domain.ChunkerName, opts.Config())
	if err != nil {
		return 0, fmt.Errorf("%w: build chunker: %w", domain.ErrChunking, err)
	}

	chunks, err := chunker.Process(ctx, doc, nil)
	if err != nil {
		return 0, fmt.Errorf("chunk document: %w", err)
	}
	logger.Debug("Chunker produced %d chunks", len(chunks))

	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
		}

		vectors, err := s.embedder.EmbedAll(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("embed chunks: %w", err)
		}
		for i := range chunks {
			chunks[i].Embedding = vectors[i]
		}
	}

	n, err := s.chunkStore.ReplaceAll(ctx, documentID, chunks)
	if err != nil {
		return 0, fmt.Errorf("replace chunks: %w", err)
	}

	if n == 0 {
		logger.Info("Document %s has no content; stored chunks cleared", documentID)
	} else {
		logger.Info("Indexed %d chunks for %s", n, documentID)
	}
	return n, nil
}

// Chunks returns the stored chunks of a document ordered by index.
func (s *IndexService) Chunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	chunks, err := s.chunkStore.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	return chunks, nil
}

// ChunkCount returns the number of stored chunks of a document.
func (s *IndexService) ChunkCount(ctx context.Context, documentID string) (int, error) {
	n, err := s.chunkStore.CountByDocument(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

// Drop deletes every stored chunk of a document.
func (s *IndexService) Drop(ctx context.Context, documentID string) error {
	unlock := s.locks.Lock(documentID)
	defer unlock()

	if err := s.chunkStore.DeleteByDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	return nil
}
