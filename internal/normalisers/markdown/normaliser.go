// Package markdown normalises Markdown documents into plain text.
package markdown

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
	"github.com/custodia-labs/lectern/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var (
	fencedCode    = regexp.MustCompile("(?m)^[ \t]*```[^\n]*$")
	inlineCode    = regexp.MustCompile("`([^`\n]+)`")
	images        = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	links         = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	hr            = regexp.MustCompile(`(?m)^[ \t]*([-*_][ \t]*){3,}$`)
	headings      = regexp.MustCompile(`(?m)^#{1,6}[ \t]+`)
	blockquote    = regexp.MustCompile(`(?m)^>[ \t]?`)
	listMarkers   = regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`)
	numberedList  = regexp.MustCompile(`(?m)^[ \t]*\d+[.)][ \t]+`)
	emphasis      = regexp.MustCompile(`(\*\*|__)([^\n]+?)(\*\*|__)`)
	italics       = regexp.MustCompile(`(^|[\s(])[*_]([^*_\n]+)[*_]`)
	trailingSpace = regexp.MustCompile(`(?m)[ \t]+$`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise strips Markdown syntax and keeps the paragraph structure the
// chunker splits on.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	source := plaintext.CleanText(string(raw.Content))
	content := StripMarkdown(source)
	if content == "" {
		return nil, fmt.Errorf("%w: %s has no text", domain.ErrInvalidInput, raw.URI)
	}

	title := raw.Title
	if title == "" {
		title = extractTitle(source, raw.URI)
	}

	return &driven.NormaliseResult{
		Document: domain.Document{
			URI:      raw.URI,
			Title:    title,
			MIMEType: raw.MIMEType,
			Content:  content,
		},
	}, nil
}

// extractTitle returns the first H1 heading, or a title derived from the URI.
func extractTitle(content, uri string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}
	return plaintext.TitleFromURI(uri)
}

// StripMarkdown removes common Markdown formatting. Code and link text are
// kept since students ask about them.
func StripMarkdown(content string) string {
	content = fencedCode.ReplaceAllString(content, "")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = images.ReplaceAllString(content, "$1")
	content = links.ReplaceAllString(content, "$1")
	content = hr.ReplaceAllString(content, "")
	content = headings.ReplaceAllString(content, "")
	content = blockquote.ReplaceAllString(content, "")
	content = listMarkers.ReplaceAllString(content, "")
	content = numberedList.ReplaceAllString(content, "")
	content = emphasis.ReplaceAllString(content, "$2")
	content = italics.ReplaceAllString(content, "$1$2")
	content = trailingSpace.ReplaceAllString(content, "")
	content = multiNewlines.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content)
}
