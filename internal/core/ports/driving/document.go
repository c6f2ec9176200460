package driving

import (
	"context"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// DocumentService manages ingested documents.
type DocumentService interface {
	// Add normalises and stores a raw document, then reindexes it.
	// A document with the same URI is updated in place.
	Add(ctx context.Context, raw *domain.RawDocument) (*IngestResult, error)

	// AddFile reads a file from disk and adds it.
	// An empty title is derived from the file name.
	AddFile(ctx context.Context, path, title string) (*IngestResult, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// List returns all documents.
	List(ctx context.Context) ([]domain.Document, error)

	// Delete removes a document and its chunks.
	Delete(ctx context.Context, documentID string) error

	// Supports reports whether a file can be ingested, judged by its extension.
	Supports(path string) bool
}

// IngestResult describes the outcome of adding a document.
type IngestResult struct {
	// Document is the stored document.
	Document domain.Document

	// Chunks is the number of chunks written by the reindex.
	Chunks int

	// Updated is true when an existing document with the same URI was replaced.
	Updated bool
}
