package driven

import (
	"context"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// Normaliser turns the bytes of one file format into plain document text.
type Normaliser interface {
	// SupportedMIMETypes lists the types handled, without parameters.
	SupportedMIMETypes() []string

	// Priority orders normalisers for the same type; higher wins.
	// Format-specific normalisers use 50-89, fallbacks 1-9.
	Priority() int

	// Normalise extracts text. Chunking is left to the index service.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult is the output of a Normaliser.
type NormaliseResult struct {
	// Document carries Title, URI, MIMEType and Content. ID and timestamps
	// are assigned by the document service.
	Document domain.Document
}
