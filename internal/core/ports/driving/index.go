package driving

import (
	"context"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// IndexService builds and inspects the chunk index of a document.
type IndexService interface {
	// Reindex chunks the document, embeds every chunk and replaces the
	// stored chunks. Returns the number of chunks written; 0 is valid.
	// Zero-valued options fall back to the configured defaults.
	Reindex(ctx context.Context, documentID string, opts domain.ChunkOptions) (int, error)

	// Chunks returns the stored chunks of a document ordered by index.
	Chunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// ChunkCount returns the number of stored chunks of a document.
	ChunkCount(ctx context.Context, documentID string) (int, error)

	// Drop deletes every stored chunk of a document.
	Drop(ctx context.Context, documentID string) error
}
