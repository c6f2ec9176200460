package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory implementation of driven.ChunkStore.
// Each document's chunks are held as one slice, so a replace is a single swap.
type ChunkStore struct {
	mu     sync.RWMutex
	chunks map[string][]domain.Chunk
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		chunks: make(map[string][]domain.Chunk),
	}
}

// ReplaceAll swaps the document's chunks for the given ones, re-indexed 0..N-1.
func (s *ChunkStore) ReplaceAll(_ context.Context, documentID string, chunks []domain.Chunk) (int, error) {
	stored := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		c.DocumentID = documentID
		c.Index = i
		if c.Embedding != nil {
			c.Embedding = append([]float32(nil), c.Embedding...)
		}
		stored[i] = c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(stored) == 0 {
		delete(s.chunks, documentID)
		return 0, nil
	}
	s.chunks[documentID] = stored
	return len(stored), nil
}

// ListByDocument returns a copy of the document's chunks ordered by index.
func (s *ChunkStore) ListByDocument(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.chunks[documentID]
	result := make([]domain.Chunk, len(stored))
	copy(result, stored)
	return result, nil
}

// CountByDocument returns the number of stored chunks for the document.
func (s *ChunkStore) CountByDocument(_ context.Context, documentID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks[documentID]), nil
}

// DeleteByDocument removes all chunks of the document.
func (s *ChunkStore) DeleteByDocument(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chunks, documentID)
	return nil
}

// Close is a no-op.
func (s *ChunkStore) Close() error {
	return nil
}
