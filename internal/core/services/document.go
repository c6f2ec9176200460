package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
	"github.com/custodia-labs/lectern/internal/core/ports/driving"
	"github.com/custodia-labs/lectern/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService ingests documents and keeps their chunk index current.
type DocumentService struct {
	docStore    driven.DocumentStore
	normalisers driven.NormaliserRegistry
	index       driving.IndexService
	now         func() time.Time
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	docStore driven.DocumentStore,
	normalisers driven.NormaliserRegistry,
	index driving.IndexService,
) *DocumentService {
	return &DocumentService{
		docStore:    docStore,
		normalisers: normalisers,
		index:       index,
		now:         time.Now,
	}
}

// Add normalises and stores a raw document, then reindexes it.
// When the reindex fails the document stays stored and the error is returned
// with the result, so the caller can retry with an explicit reindex.
func (s *DocumentService) Add(ctx context.Context, raw *domain.RawDocument) (*driving.IngestResult, error) {
	if raw == nil || len(raw.Content) == 0 {
		return nil, fmt.Errorf("%w: document is empty", domain.ErrInvalidInput)
	}

	logger.Section("Add Document")
	logger.Debug("URI: %s, MIME: %s, %d bytes", raw.URI, raw.MIMEType, len(raw.Content))

	normalised, err := s.normalisers.Normalise(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("normalise: %w", err)
	}

	doc := normalised.Document
	doc.Title = firstNonEmpty(raw.Title, doc.Title, titleFromURI(raw.URI), "Untitled")
	doc.URI = raw.URI
	doc.MIMEType = raw.MIMEType

	now := s.now()
	result := &driving.IngestResult{}

	existing, err := s.findByURI(ctx, raw.URI)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		doc.ID = existing.ID
		doc.CreatedAt = existing.CreatedAt
		result.Updated = true
	} else {
		doc.ID = uuid.NewString()
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	if err := s.docStore.SaveDocument(ctx, &doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	result.Document = doc

	n, err := s.index.Reindex(ctx, doc.ID, domain.ChunkOptions{})
	if err != nil {
		return result, fmt.Errorf("reindex %s: %w", doc.ID, err)
	}
	result.Chunks = n

	logger.Info("Added %q (%s) with %d chunks", doc.Title, doc.ID, n)
	return result, nil
}

// AddFile reads a file from disk and adds it.
func (s *DocumentService) AddFile(ctx context.Context, path, title string) (*driving.IngestResult, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return s.Add(ctx, &domain.RawDocument{
		URI:      abs,
		Title:    title,
		MIMEType: DetectMIMEType(abs, content),
		Content:  content,
	})
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, documentID)
}

// List returns all documents, newest first.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	docs, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}

// Delete removes a document's chunks and then the document.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return fmt.Errorf("get document: %w", err)
	}
	if err := s.index.Drop(ctx, documentID); err != nil {
		return err
	}
	if err := s.docStore.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	logger.Info("Deleted document %s", documentID)
	return nil
}

// Supports reports whether a file's type has a registered normaliser.
func (s *DocumentService) Supports(path string) bool {
	t := DetectMIMEType(path, nil)
	for _, supported := range s.normalisers.SupportedMIMETypes() {
		if supported == t {
			return true
		}
	}
	return false
}

func (s *DocumentService) findByURI(ctx context.Context, uri string) (*domain.Document, error) {
	if uri == "" {
		return nil, nil
	}
	docs, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	for i := range docs {
		if docs[i].URI == uri {
			return &docs[i], nil
		}
	}
	return nil, nil
}

func titleFromURI(uri string) string {
	if uri == "" {
		return ""
	}
	base := filepath.Base(uri)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
