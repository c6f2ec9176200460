// Package pdf extracts text from PDF documents.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
	"github.com/custodia-labs/lectern/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// maxTitleRunes caps titles taken from the first line of text.
const maxTitleRunes = 120

var (
	// ErrNoText is returned for PDFs without an extractable text layer,
	// typically scans.
	ErrNoText = errors.New("pdf has no extractable text")

	horizontalSpace = regexp.MustCompile(`[ \t\f\v]+`)
	blankRuns       = regexp.MustCompile(`\n{3,}`)
)

// Extractor returns the text of each page in order.
type Extractor func(content []byte) ([]string, error)

// Normaliser handles PDF documents.
type Normaliser struct {
	extract Extractor
}

// New creates a PDF normaliser backed by github.com/ledongthuc/pdf.
func New() *Normaliser {
	return &Normaliser{extract: ExtractPages}
}

// NewWithExtractor creates a PDF normaliser with a custom page extractor.
func NewWithExtractor(extract Extractor) *Normaliser {
	return &Normaliser{extract: extract}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the text layer. Pages are separated by a blank line so
// a page break is also a paragraph break.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	pages, err := n.extract(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: read pdf %s: %w", domain.ErrInvalidInput, raw.URI, err)
	}

	cleaned := make([]string, 0, len(pages))
	for _, page := range pages {
		if text := cleanPage(page); text != "" {
			cleaned = append(cleaned, text)
		}
	}
	content := blankRuns.ReplaceAllString(strings.Join(cleaned, "\n\n"), "\n\n")
	if content == "" {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, raw.URI, ErrNoText)
	}

	title := raw.Title
	if title == "" {
		title = extractTitle(content, raw.URI)
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

// ExtractPages reads every page's plain text with ledongthuc/pdf.
// The parser panics on some malformed files; that is reported as an error.
func ExtractPages(content []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}

	total := reader.NumPage()
	pages = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func cleanPage(page string) string {
	page = plaintext.CleanText(page)
	lines := strings.Split(page, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(horizontalSpace.ReplaceAllString(line, " "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// extractTitle uses the first non-empty line, falling back to the file name.
func extractTitle(content, uri string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if utf8.RuneCountInString(line) > maxTitleRunes {
			line = string([]rune(line)[:maxTitleRunes])
		}
		return line
	}
	return plaintext.TitleFromURI(uri)
}
