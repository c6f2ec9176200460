// Package chunker splits document text into overlapping, size-bounded chunks.
package chunker

import (
	"context"
	"fmt"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

// Name is the registry name of the chunker processor.
const Name = "chunker"

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// Processor turns a document into chunks with dense indices.
// It implements the PostProcessor interface.
type Processor struct {
	opts domain.ChunkOptions
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMaxChars sets the hard upper bound on chunk length.
func WithMaxChars(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.opts.MaxChars = n
		}
	}
}

// WithMinChars sets the soft lower bound on chunk length.
func WithMinChars(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.opts.MinChars = n
		}
	}
}

// WithOverlapRatio sets the fraction of MaxChars carried across a forced boundary.
// Values outside (0, 1) keep the default.
func WithOverlapRatio(r float64) Option {
	return func(p *Processor) {
		if domain.ValidOverlapRatio(r) {
			p.opts.OverlapRatio = r
		}
	}
}

// WithOptions replaces all chunking options at once.
// Unset fields keep their defaults.
func WithOptions(opts domain.ChunkOptions) Option {
	return func(p *Processor) {
		p.opts = opts.WithDefaults()
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{opts: domain.DefaultChunkOptions()}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return Name
}

// Options returns the effective chunking options.
func (p *Processor) Options() domain.ChunkOptions {
	return p.opts
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrChunking)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	segments := Split(doc.Content, p.opts)
	if len(segments) == 0 {
		return nil, nil
	}

	chunks := make([]domain.Chunk, 0, len(segments))
	for i, seg := range segments {
		chunks = append(chunks, domain.Chunk{
			DocumentID:   doc.ID,
			Index:        i,
			Text:         seg.Text,
			TokensApprox: seg.TokensApprox,
		})
	}

	return chunks, nil
}
