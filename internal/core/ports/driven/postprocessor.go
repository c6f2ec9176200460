package driven

import (
	"context"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// PostProcessor turns document content into chunks.
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a document and returns chunks.
	// If the processor creates chunks (e.g., chunker), it receives nil and returns new chunks.
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorFactory builds processors by name from a generic config bag.
// Config keys are processor-specific (e.g., "max_chars" for the chunker).
type PostProcessorFactory interface {
	// Build creates a processor by name.
	// Returns an error if the name is not registered.
	Build(name string, cfg map[string]any) (PostProcessor, error)
}
