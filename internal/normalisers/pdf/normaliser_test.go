package pdf

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

func fixedPages(pages ...string) Extractor {
	return func([]byte) ([]string, error) { return pages, nil }
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = New()
}

func TestSupportedMIMETypes(t *testing.T) {
	n := New()

	assert.Equal(t, []string{"application/pdf"}, n.SupportedMIMETypes())
	assert.Equal(t, 50, n.Priority())
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise_JoinsPagesAsParagraphs(t *testing.T) {
	n := NewWithExtractor(fixedPages(
		"  Chapter 1:   Cells \n\nCells are   small.  ",
		"",
		"\tOrganelles\tdo work.",
	))

	result, err := n.Normalise(context.Background(), &domain.RawDocument{
		URI:      "/course/bio.pdf",
		MIMEType: "application/pdf",
		Content:  []byte("%PDF-1.4"),
	})
	require.NoError(t, err)

	doc := result.Document
	assert.Equal(t, "Chapter 1: Cells", doc.Title)
	assert.Equal(t, "application/pdf", doc.MIMEType)
	assert.Equal(t, "Chapter 1: Cells\n\nCells are small.\n\nOrganelles do work.", doc.Content)
}

func TestNormalise_ExplicitTitle(t *testing.T) {
	n := NewWithExtractor(fixedPages("Body text"))

	result, err := n.Normalise(context.Background(), &domain.RawDocument{Title: "Week 4", Content: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, "Week 4", result.Document.Title)
}

func TestNormalise_NoTextLayer(t *testing.T) {
	n := NewWithExtractor(fixedPages("", "  \n "))

	_, err := n.Normalise(context.Background(), &domain.RawDocument{URI: "/scan.pdf", Content: []byte("x")})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorIs(t, err, ErrNoText)
}

func TestNormalise_ExtractorError(t *testing.T) {
	n := NewWithExtractor(func([]byte) ([]string, error) { return nil, errors.New("xref table missing") })

	_, err := n.Normalise(context.Background(), &domain.RawDocument{URI: "/bad.pdf", Content: []byte("x")})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorContains(t, err, "xref table missing")
}

func TestExtractPages_NotAPDF(t *testing.T) {
	_, err := ExtractPages([]byte("this is definitely not a pdf file"))

	assert.Error(t, err)
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		uri      string
		expected string
	}{
		{"first line", "Document Title\n\nSome content here.", "/doc.pdf", "Document Title"},
		{"skips blank lines", "\n\n\nActual Title\nContent", "/doc.pdf", "Actual Title"},
		{"fallback to filename", "", "/path/to/lecture_notes.pdf", "lecture notes"},
		{"long line truncated", strings.Repeat("a", 200), "/x.pdf", strings.Repeat("a", maxTitleRunes)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractTitle(tt.content, tt.uri))
		})
	}
}
