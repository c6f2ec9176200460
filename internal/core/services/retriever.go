package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
	"github.com/custodia-labs/lectern/internal/logger"
)

// Retriever ranks the stored chunks of one document against a query vector.
type Retriever struct {
	store driven.ChunkStore
}

// NewRetriever creates a retriever over the given chunk store.
func NewRetriever(store driven.ChunkStore) *Retriever {
	return &Retriever{store: store}
}

// Retrieve returns the top clamp(topK, 1, 8) chunks of the document by
// cosine similarity. Returns domain.ErrNoIndexedContent when the document
// has no embedded chunks.
func (r *Retriever) Retrieve(
	ctx context.Context, query []float32, documentID string, topK int,
) ([]domain.ScoredChunk, error) {
	chunks, err := r.store.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}

	ranked := Rank(query, chunks, topK)
	if len(ranked) == 0 {
		return nil, fmt.Errorf("document %s: %w", documentID, domain.ErrNoIndexedContent)
	}

	logger.Debug("Retrieved %d of %d chunks (best score %.4f)", len(ranked), len(chunks), ranked[0].Score)
	return ranked, nil
}

// Rank scores every chunk that carries an embedding, sorts by score
// descending with ties broken by chunk index ascending, and keeps the
// first clamp(topK, 1, 8).
func Rank(query []float32, chunks []domain.Chunk, topK int) []domain.ScoredChunk {
	scored := make([]domain.ScoredChunk, 0, len(chunks))
	for _, c := range chunks {
		if !c.HasEmbedding() {
			continue
		}
		scored = append(scored, domain.ScoredChunk{Chunk: c, Score: CosineSimilarity(query, c.Embedding)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Chunk.Index < scored[j].Chunk.Index
	})

	if k := domain.ClampTopK(topK); len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// CosineSimilarity returns dot(a, b) / (|a| * |b|) over the shorter length.
// A zero denominator is replaced by 1, so an all-zero vector scores 0.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		denom = 1
	}
	return dot / denom
}
