package driven

import (
	"context"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// DocumentStore persists documents and their normalised text.
type DocumentStore interface {
	// SaveDocument inserts doc, or overwrites the document with the same ID.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument returns domain.ErrNotFound for unknown IDs.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// DeleteDocument is a no-op for unknown IDs.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns all documents, newest first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)
}
