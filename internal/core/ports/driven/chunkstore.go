package driven

import (
	"context"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// ChunkStore persists the chunks of each document.
// Every operation is scoped to one document; (documentID, index) is unique.
type ChunkStore interface {
	// ReplaceAll deletes every chunk of the document and inserts chunks with
	// indices 0..N-1 in input order. The Index and DocumentID fields of the
	// input are ignored. Returns the number of chunks written; an empty slice
	// is a pure deletion and returns 0.
	ReplaceAll(ctx context.Context, documentID string, chunks []domain.Chunk) (int, error)

	// ListByDocument returns the document's chunks ordered by index.
	ListByDocument(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// CountByDocument returns the number of stored chunks for the document.
	CountByDocument(ctx context.Context, documentID string) (int, error)

	// DeleteByDocument removes all chunks of the document.
	DeleteByDocument(ctx context.Context, documentID string) error

	// Close releases resources.
	Close() error
}
