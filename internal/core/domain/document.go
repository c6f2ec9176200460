package domain

import "time"

// Document represents an ingested document with metadata.
// It is the canonical representation after normalisation.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Title is the human-readable title.
	Title string

	// URI is the original location (file path, URL, etc).
	URI string

	// MIMEType is the content type the document was normalised from.
	MIMEType string

	// Content is the full text content after normalisation.
	// This is the complete document text before chunking.
	Content string

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last updated.
	UpdatedAt time.Time
}

// Chunk represents a retrievable unit within a document.
// Documents are split into chunks and each chunk is embedded separately.
type Chunk struct {
	// DocumentID links to the parent Document.
	DocumentID string

	// Index is the 0-based position within the document.
	// After a reindex the indices of a document are exactly 0..N-1.
	Index int

	// Text is the chunk content. Never empty.
	Text string

	// TokensApprox is a rough token estimate (1 token per 4 characters).
	TokensApprox int

	// Embedding is the vector representation for semantic retrieval.
	// It may be empty before embedding completes.
	Embedding []float32
}

// HasEmbedding returns true if the chunk carries a vector.
func (c Chunk) HasEmbedding() bool {
	return len(c.Embedding) > 0
}

// RawDocument represents opaque bytes read from a file or request.
// It is the input to normalisation.
type RawDocument struct {
	// URI is the original location (file path, URL, etc).
	URI string

	// Title overrides the title derived from the URI when set.
	Title string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}
