package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown MIME type or backend.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Indexing and retrieval are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Pipeline Errors.

	// ErrChunking indicates the chunker could not split well-formed input.
	// It signals a programming error rather than bad data.
	ErrChunking = errors.New("chunking failed")

	// ErrEmbeddingService indicates a remote embedding call failed,
	// timed out, or returned an empty or malformed vector.
	ErrEmbeddingService = errors.New("embedding service error")

	// ErrNoIndexedContent indicates retrieval found no stored chunks.
	// The document must be reindexed before it can be queried.
	ErrNoIndexedContent = errors.New("no indexed content for document")

	// ErrGenerationTimeout indicates the generator did not answer in time.
	// Callers fall back to keyword search.
	ErrGenerationTimeout = errors.New("generation timed out")

	// ErrGenerationUnavailable indicates the generator refused the connection.
	// It is not retried; an operator has to start the service.
	ErrGenerationUnavailable = errors.New("generation service is not running")
)
