package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

// createTestDocument creates a document to satisfy foreign key constraints.
func createTestDocument(t *testing.T, store *Store, docID string, createdAt time.Time) *domain.Document {
	t.Helper()
	doc := &domain.Document{
		ID:        docID,
		Title:     "Lecture " + docID,
		URI:       "/notes/" + docID + ".md",
		MIMEType:  "text/markdown",
		Content:   "# Heading\n\nBody of " + docID,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, store.DocumentStore().SaveDocument(context.Background(), doc))
	return doc
}

func testChunks(texts ...string) []domain.Chunk {
	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			Index:        99, // ignored by ReplaceAll
			Text:         text,
			TokensApprox: len(text)/4 + 1,
			Embedding:    []float32{float32(i), 0.5, -1.25},
		}
	}
	return chunks
}

// ==================== Store Creation ====================

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, DatabaseFile), store.Path())
	assert.FileExists(t, store.Path())
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	now := time.Now().UTC().Truncate(time.Second)

	store, err := NewStore(dir)
	require.NoError(t, err)
	createTestDocument(t, store, "doc-1", now)
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	doc, err := reopened.DocumentStore().GetDocument(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Lecture doc-1", doc.Title)

	var versions int
	require.NoError(t, reopened.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&versions))
	assert.Equal(t, 1, versions)
}

// ==================== Document Store ====================

func TestDocumentStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)
	want := createTestDocument(t, store, "doc-1", now)

	got, err := store.DocumentStore().GetDocument(context.Background(), "doc-1")

	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.URI, got.URI)
	assert.Equal(t, want.MIMEType, got.MIMEType)
	assert.Equal(t, want.Content, got.Content)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
}

func TestDocumentStore_SaveUpdates(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	doc := createTestDocument(t, store, "doc-1", now)

	doc.Content = "revised"
	doc.UpdatedAt = now.Add(time.Minute)
	require.NoError(t, store.DocumentStore().SaveDocument(ctx, doc))

	got, err := store.DocumentStore().GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "revised", got.Content)
	assert.True(t, now.Equal(got.CreatedAt))
	assert.True(t, now.Add(time.Minute).Equal(got.UpdatedAt))
}

func TestDocumentStore_GetNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.DocumentStore().GetDocument(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_ListNewestFirst(t *testing.T) {
	store := setupTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	createTestDocument(t, store, "old", base)
	createTestDocument(t, store, "new", base.Add(2*time.Hour))
	createTestDocument(t, store, "mid", base.Add(time.Hour))

	docs, err := store.DocumentStore().ListDocuments(context.Background())

	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "new", docs[0].ID)
	assert.Equal(t, "mid", docs[1].ID)
	assert.Equal(t, "old", docs[2].ID)
}

func TestDocumentStore_ListEmpty(t *testing.T) {
	store := setupTestStore(t)

	docs, err := store.DocumentStore().ListDocuments(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestDocumentStore_DeleteCascadesToChunks(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	createTestDocument(t, store, "doc-1", time.Now())
	_, err := store.ChunkStore().ReplaceAll(ctx, "doc-1", testChunks("a", "b"))
	require.NoError(t, err)

	require.NoError(t, store.DocumentStore().DeleteDocument(ctx, "doc-1"))

	n, err := store.ChunkStore().CountByDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

// ==================== Chunk Store ====================

func TestChunkStore_ReplaceAll_DenseIndicesAndEmbeddings(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	createTestDocument(t, store, "doc-1", time.Now())
	chunks := store.ChunkStore()

	n, err := chunks.ReplaceAll(ctx, "doc-1", testChunks("first", "second", "third"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := chunks.ListByDocument(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, c := range got {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, "doc-1", c.DocumentID)
		assert.Equal(t, []float32{float32(i), 0.5, -1.25}, c.Embedding)
	}
	assert.Equal(t, "first", got[0].Text)
	assert.Equal(t, "third", got[2].Text)
}

func TestChunkStore_ReplaceAll_NoStaleChunks(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	createTestDocument(t, store, "doc-1", time.Now())
	chunks := store.ChunkStore()

	_, err := chunks.ReplaceAll(ctx, "doc-1", testChunks("a", "b", "c", "d"))
	require.NoError(t, err)
	_, err = chunks.ReplaceAll(ctx, "doc-1", testChunks("x", "y"))
	require.NoError(t, err)

	got, err := chunks.ListByDocument(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "x", got[0].Text)
	assert.Equal(t, "y", got[1].Text)
}

func TestChunkStore_ReplaceAll_EmptyIsDeletion(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	createTestDocument(t, store, "doc-1", time.Now())
	chunks := store.ChunkStore()
	_, err := chunks.ReplaceAll(ctx, "doc-1", testChunks("a"))
	require.NoError(t, err)

	n, err := chunks.ReplaceAll(ctx, "doc-1", nil)

	require.NoError(t, err)
	assert.Zero(t, n)
	count, err := chunks.CountByDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestChunkStore_ReplaceAll_FailureRollsBack(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	createTestDocument(t, store, "doc-1", time.Now())
	chunks := store.ChunkStore()
	_, err := chunks.ReplaceAll(ctx, "doc-1", testChunks("keep", "me"))
	require.NoError(t, err)

	// Empty text violates the CHECK constraint on the second row.
	_, err = chunks.ReplaceAll(ctx, "doc-1", testChunks("fine", ""))
	require.Error(t, err)

	got, err := chunks.ListByDocument(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "keep", got[0].Text)
}

func TestChunkStore_ReplaceAll_UnknownDocument(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.ChunkStore().ReplaceAll(context.Background(), "ghost", testChunks("a"))

	assert.Error(t, err)
}

func TestChunkStore_ChunkWithoutEmbedding(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	createTestDocument(t, store, "doc-1", time.Now())

	_, err := store.ChunkStore().ReplaceAll(ctx, "doc-1", []domain.Chunk{{Text: "bare", TokensApprox: 1}})
	require.NoError(t, err)

	got, err := store.ChunkStore().ListByDocument(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].HasEmbedding())
}

func TestChunkStore_DocumentsAreIsolated(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	createTestDocument(t, store, "doc-1", time.Now())
	createTestDocument(t, store, "doc-2", time.Now())
	chunks := store.ChunkStore()

	_, err := chunks.ReplaceAll(ctx, "doc-1", testChunks("a", "b"))
	require.NoError(t, err)
	_, err = chunks.ReplaceAll(ctx, "doc-2", testChunks("c"))
	require.NoError(t, err)
	require.NoError(t, chunks.DeleteByDocument(ctx, "doc-1"))

	n1, err := chunks.CountByDocument(ctx, "doc-1")
	require.NoError(t, err)
	n2, err := chunks.CountByDocument(ctx, "doc-2")
	require.NoError(t, err)
	assert.Zero(t, n1)
	assert.Equal(t, 1, n2)
}

func TestChunkStore_ConcurrentReplace(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	ids := []string{"doc-1", "doc-2", "doc-3"}
	for _, id := range ids {
		createTestDocument(t, store, id, time.Now())
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := store.ChunkStore().ReplaceAll(ctx, id, testChunks("one", "two"))
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	for _, id := range ids {
		n, err := store.ChunkStore().CountByDocument(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	}
}

func TestFloat32BytesRoundTrip(t *testing.T) {
	in := []float32{0, 1.5, -3.25, 1e-7}

	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
