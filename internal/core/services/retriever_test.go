package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lectern/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lectern/internal/core/domain"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"both zero", []float32{0, 0}, []float32{0, 0}, 0},
		{"shorter length wins", []float32{1, 0, 5}, []float32{1, 0}, 1},
		{"empty", nil, []float32{1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestCosineSimilarity_Range(t *testing.T) {
	got := CosineSimilarity([]float32{0.3, -0.7, 2.5}, []float32{-1.2, 0.4, 0.9})

	assert.GreaterOrEqual(t, got, -1.0)
	assert.LessOrEqual(t, got, 1.0)
	assert.False(t, math.IsNaN(got))
}

func TestRank_OrdersByScoreThenIndex(t *testing.T) {
	chunks := []domain.Chunk{
		{Index: 0, Embedding: []float32{0, 1}},
		{Index: 1, Embedding: []float32{1, 0}},
		{Index: 2, Embedding: []float32{1, 0}},
		{Index: 3, Embedding: []float32{1, 1}},
	}

	ranked := Rank([]float32{1, 0}, chunks, 8)

	require.Len(t, ranked, 4)
	assert.Equal(t, 1, ranked[0].Chunk.Index)
	assert.Equal(t, 2, ranked[1].Chunk.Index)
	assert.Equal(t, 3, ranked[2].Chunk.Index)
	assert.Equal(t, 0, ranked[3].Chunk.Index)
}

func TestRank_SkipsChunksWithoutEmbedding(t *testing.T) {
	chunks := []domain.Chunk{
		{Index: 0},
		{Index: 1, Embedding: []float32{1}},
	}

	ranked := Rank([]float32{1}, chunks, 4)

	require.Len(t, ranked, 1)
	assert.Equal(t, 1, ranked[0].Chunk.Index)
}

func TestRank_ClampsTopK(t *testing.T) {
	chunks := make([]domain.Chunk, 12)
	for i := range chunks {
		chunks[i] = domain.Chunk{Index: i, Embedding: []float32{1, float32(i)}}
	}

	tests := []struct {
		topK int
		want int
	}{
		{topK: -3, want: 1},
		{topK: 0, want: 1},
		{topK: 5, want: 5},
		{topK: 50, want: 8},
	}

	for _, tt := range tests {
		assert.Len(t, Rank([]float32{1, 1}, chunks, tt.topK), tt.want, "topK=%d", tt.topK)
	}
}

func TestRetriever_Retrieve(t *testing.T) {
	store := memory.NewChunkStore()
	_, err := store.ReplaceAll(context.Background(), "doc-1", []domain.Chunk{
		{Text: "a", Embedding: []float32{1, 0, 0}},
		{Text: "b", Embedding: []float32{0, 1, 0}},
		{Text: "c", Embedding: []float32{0.9, 0.1, 0}},
	})
	require.NoError(t, err)

	ranked, err := NewRetriever(store).Retrieve(context.Background(), []float32{1, 0, 0}, "doc-1", 2)

	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, 0, ranked[0].Chunk.Index)
	assert.Equal(t, 2, ranked[1].Chunk.Index)
	assert.InDelta(t, 1.0, ranked[0].Score, 1e-6)
}

func TestRetriever_Retrieve_NoIndexedContent(t *testing.T) {
	store := memory.NewChunkStore()

	_, err := NewRetriever(store).Retrieve(context.Background(), []float32{1}, "doc-1", 4)

	assert.ErrorIs(t, err, domain.ErrNoIndexedContent)
}

func TestRetriever_Retrieve_StoreError(t *testing.T) {
	boom := errors.New("disk gone")
	store := &failingChunkStore{ChunkStore: memory.NewChunkStore(), listErr: boom}

	_, err := NewRetriever(store).Retrieve(context.Background(), []float32{1}, "doc-1", 4)

	assert.ErrorIs(t, err, boom)
}
