package mcp

import (
	"context"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driving"
)

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	answer  *domain.Answer
	err     error
	lastReq domain.AskRequest
}

func (m *mockAskService) Ask(_ context.Context, req domain.AskRequest) (*domain.Answer, error) {
	m.lastReq = req
	return m.answer, m.err
}

func (m *mockAskService) WarmUp(_ context.Context) error {
	return m.err
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	count    int
	chunks   []domain.Chunk
	err      error
	lastOpts domain.ChunkOptions
}

func (m *mockIndexService) Reindex(_ context.Context, _ string, opts domain.ChunkOptions) (int, error) {
	m.lastOpts = opts
	return m.count, m.err
}

func (m *mockIndexService) Chunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return m.chunks, m.err
}

func (m *mockIndexService) ChunkCount(_ context.Context, _ string) (int, error) {
	return m.count, m.err
}

func (m *mockIndexService) Drop(_ context.Context, _ string) error {
	return m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	err       error
}

func (m *mockDocumentService) Add(_ context.Context, _ *domain.RawDocument) (*driving.IngestResult, error) {
	return nil, m.err
}

func (m *mockDocumentService) AddFile(_ context.Context, _, _ string) (*driving.IngestResult, error) {
	return nil, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockDocumentService) Supports(_ string) bool {
	return true
}

// Compile-time interface checks.
var (
	_ driving.AskService      = (*mockAskService)(nil)
	_ driving.IndexService    = (*mockIndexService)(nil)
	_ driving.DocumentService = (*mockDocumentService)(nil)
)

func newTestServer(t interface {
	Helper()
	Fatalf(string, ...any)
}, ports *Ports) *Server {
	t.Helper()
	s, err := NewServer(ports)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}
