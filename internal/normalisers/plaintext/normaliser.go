// Package plaintext normalises plain text and other text-like formats.
package plaintext

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/csv",
		"text/markdown",
		"text/x-markdown",
		"text/html",
		"application/json",
		"application/xml",
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise decodes the bytes as UTF-8 text. Line endings become "\n" so
// paragraph breaks are a plain blank line for the chunker.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content := CleanText(string(raw.Content))
	if content == "" {
		return nil, fmt.Errorf("%w: %s has no text", domain.ErrInvalidInput, raw.URI)
	}

	return &driven.NormaliseResult{
		Document: domain.Document{
			URI:      raw.URI,
			Title:    titleOrURI(raw),
			MIMEType: raw.MIMEType,
			Content:  content,
		},
	}, nil
}

// CleanText strips a byte order mark, unifies line endings and trims
// surrounding whitespace.
func CleanText(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimSpace(s)
}

// TitleFromURI derives a human-readable title from a file name.
func TitleFromURI(uri string) string {
	if uri == "" {
		return ""
	}
	filename := filepath.Base(uri)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return strings.TrimSpace(filename)
}

func titleOrURI(raw *domain.RawDocument) string {
	if raw.Title != "" {
		return raw.Title
	}
	return TitleFromURI(raw.URI)
}
