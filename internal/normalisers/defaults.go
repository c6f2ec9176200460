package normalisers

import (
	"github.com/custodia-labs/lectern/internal/normalisers/markdown"
	"github.com/custodia-labs/lectern/internal/normalisers/pdf"
	"github.com/custodia-labs/lectern/internal/normalisers/plaintext"
)

// DefaultRegistry returns a registry with the plain text, Markdown and PDF
// normalisers registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(pdf.New())
	return r
}
