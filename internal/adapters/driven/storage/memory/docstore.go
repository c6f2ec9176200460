package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore holds documents by value, so callers never share a
// *domain.Document with the store.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]domain.Document
}

// NewDocumentStore returns an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]domain.Document)}
}

// SaveDocument stores a copy of doc, replacing any document with the same ID.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	s.docs[doc.ID] = *doc
	s.mu.Unlock()
	return nil
}

// GetDocument returns a copy of the document or domain.ErrNotFound.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	doc, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// DeleteDocument removes a document. Missing IDs are not an error.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.docs, id)
	s.mu.Unlock()
	return nil
}

// ListDocuments orders by creation time, newest first, then by ID.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	out := make([]domain.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		out = append(out, doc)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b domain.Document) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}
