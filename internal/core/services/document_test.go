package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

func newDocumentFixture(t *testing.T) (*testPipeline, *DocumentService) {
	t.Helper()
	p := newTestPipeline(t)
	normalisers := &mockNormaliserRegistry{types: []string{MIMETypePlain, MIMETypeMarkdown}}
	return p, NewDocumentService(p.docs, normalisers, p.index)
}

func TestDocumentService_Add(t *testing.T) {
	p, svc := newDocumentFixture(t)

	result, err := svc.Add(context.Background(), &domain.RawDocument{
		URI:      "/notes/biology.txt",
		MIMEType: MIMETypePlain,
		Content:  []byte(threeParagraphs()),
	})

	require.NoError(t, err)
	assert.False(t, result.Updated)
	assert.Equal(t, 2, result.Chunks)
	assert.NotEmpty(t, result.Document.ID)
	assert.Equal(t, "biology", result.Document.Title)
	assert.Equal(t, MIMETypePlain, result.Document.MIMEType)

	stored, err := p.docs.GetDocument(context.Background(), result.Document.ID)
	require.NoError(t, err)
	assert.Equal(t, threeParagraphs(), stored.Content)
}

func TestDocumentService_Add_ExplicitTitle(t *testing.T) {
	_, svc := newDocumentFixture(t)

	result, err := svc.Add(context.Background(), &domain.RawDocument{
		URI:      "/notes/bio.md",
		Title:    "  Cell Biology ",
		MIMEType: MIMETypeMarkdown,
		Content:  []byte("Cells divide."),
	})

	require.NoError(t, err)
	assert.Equal(t, "Cell Biology", result.Document.Title)
}

func TestDocumentService_Add_UntitledWithoutURI(t *testing.T) {
	_, svc := newDocumentFixture(t)

	result, err := svc.Add(context.Background(), &domain.RawDocument{
		MIMEType: MIMETypePlain,
		Content:  []byte("Pasted text."),
	})

	require.NoError(t, err)
	assert.Equal(t, "Untitled", result.Document.Title)
}

func TestDocumentService_Add_SameURIUpdates(t *testing.T) {
	p, svc := newDocumentFixture(t)
	created := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return created }

	first, err := svc.Add(context.Background(), &domain.RawDocument{
		URI: "/notes/a.txt", MIMEType: MIMETypePlain, Content: []byte("Version one."),
	})
	require.NoError(t, err)

	svc.now = func() time.Time { return created.Add(time.Hour) }
	second, err := svc.Add(context.Background(), &domain.RawDocument{
		URI: "/notes/a.txt", MIMEType: MIMETypePlain, Content: []byte("Version two."),
	})
	require.NoError(t, err)

	assert.True(t, second.Updated)
	assert.Equal(t, first.Document.ID, second.Document.ID)
	assert.Equal(t, created, second.Document.CreatedAt)
	assert.Equal(t, created.Add(time.Hour), second.Document.UpdatedAt)

	docs, err := p.docs.ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Version two.", docs[0].Content)
}

func TestDocumentService_Add_Empty(t *testing.T) {
	_, svc := newDocumentFixture(t)

	_, err := svc.Add(context.Background(), &domain.RawDocument{URI: "/x.txt", MIMEType: MIMETypePlain})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Add(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDocumentService_Add_UnsupportedType(t *testing.T) {
	_, svc := newDocumentFixture(t)

	_, err := svc.Add(context.Background(), &domain.RawDocument{
		URI: "/x.bin", MIMEType: "application/octet-stream", Content: []byte{0x1, 0x2},
	})

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestDocumentService_Add_ReindexFailureKeepsDocument(t *testing.T) {
	p, svc := newDocumentFixture(t)
	p.embed.embedFunc = func(context.Context, string) ([]float32, error) {
		return nil, errors.New("model not found")
	}

	result, err := svc.Add(context.Background(), &domain.RawDocument{
		URI: "/notes/a.txt", MIMEType: MIMETypePlain, Content: []byte("Some notes."),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingService)
	require.NotNil(t, result)
	assert.Zero(t, result.Chunks)

	_, getErr := p.docs.GetDocument(context.Background(), result.Document.ID)
	assert.NoError(t, getErr)
}

func TestDocumentService_AddFile(t *testing.T) {
	_, svc := newDocumentFixture(t)
	path := filepath.Join(t.TempDir(), "lecture-3.md")
	require.NoError(t, os.WriteFile(path, []byte("# Enzymes\n\nEnzymes speed up reactions."), 0o600))

	result, err := svc.AddFile(context.Background(), path, "")

	require.NoError(t, err)
	assert.Equal(t, "lecture-3", result.Document.Title)
	assert.Equal(t, MIMETypeMarkdown, result.Document.MIMEType)
	assert.Equal(t, path, result.Document.URI)
	assert.Equal(t, 1, result.Chunks)
}

func TestDocumentService_AddFile_Missing(t *testing.T) {
	_, svc := newDocumentFixture(t)

	_, err := svc.AddFile(context.Background(), filepath.Join(t.TempDir(), "nope.txt"), "")

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDocumentService_ListNewestFirst(t *testing.T) {
	p, svc := newDocumentFixture(t)
	base := time.Now()
	for i, id := range []string{"old", "mid", "new"} {
		doc := &domain.Document{ID: id, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, p.docs.SaveDocument(context.Background(), doc))
	}

	docs, err := svc.List(context.Background())

	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "new", docs[0].ID)
	assert.Equal(t, "old", docs[2].ID)
}

func TestDocumentService_Get(t *testing.T) {
	p, svc := newDocumentFixture(t)
	p.saveDoc(t, "doc-1", "content")

	doc, err := svc.Get(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", doc.ID)

	_, err = svc.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentService_Delete(t *testing.T) {
	p, svc := newDocumentFixture(t)
	p.saveDoc(t, "doc-1", "content")
	p.seedChunks(t, "doc-1", []float32{1}, []float32{1})

	require.NoError(t, svc.Delete(context.Background(), "doc-1"))

	_, err := p.docs.GetDocument(context.Background(), "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	count, err := p.chunks.CountByDocument(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDocumentService_Delete_Missing(t *testing.T) {
	_, svc := newDocumentFixture(t)

	assert.ErrorIs(t, svc.Delete(context.Background(), "ghost"), domain.ErrNotFound)
}

func TestDocumentService_Supports(t *testing.T) {
	_, svc := newDocumentFixture(t)

	assert.True(t, svc.Supports("notes.txt"))
	assert.True(t, svc.Supports("README.MD"))
	assert.False(t, svc.Supports("slides.pdf"))
}
