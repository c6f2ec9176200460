package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lectern/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/postprocessors"
)

// testPipeline bundles the in-memory collaborators used across service tests.
type testPipeline struct {
	docs     *memory.DocumentStore
	chunks   *memory.ChunkStore
	embed    *mockEmbeddingService
	embedder *BatchEmbedder
	index    *IndexService
}

func newTestPipeline(t *testing.T) *testPipeline {
	t.Helper()

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)

	p := &testPipeline{
		docs:   memory.NewDocumentStore(),
		chunks: memory.NewChunkStore(),
		embed:  &mockEmbeddingService{},
	}
	p.embedder = NewBatchEmbedder(p.embed, 2, 0)
	p.index = NewIndexService(p.docs, p.chunks, registry, p.embedder)
	return p
}

func (p *testPipeline) saveDoc(t *testing.T, id, content string) *domain.Document {
	t.Helper()
	doc := &domain.Document{
		ID:        id,
		Title:     "Lecture " + id,
		URI:       "/notes/" + id + ".txt",
		MIMEType:  MIMETypePlain,
		Content:   content,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, p.docs.SaveDocument(context.Background(), doc))
	return doc
}

// seedChunks stores chunks with fixed embeddings, bypassing the chunker.
func (p *testPipeline) seedChunks(t *testing.T, docID string, embeddings ...[]float32) {
	t.Helper()
	chunks := make([]domain.Chunk, len(embeddings))
	for i, e := range embeddings {
		chunks[i] = domain.Chunk{
			Text:         "chunk text " + strings.Repeat("x", i+1),
			TokensApprox: 3,
			Embedding:    e,
		}
	}
	_, err := p.chunks.ReplaceAll(context.Background(), docID, chunks)
	require.NoError(t, err)
}

// paragraph returns a paragraph of roughly n characters.
func paragraph(word string, n int) string {
	var b strings.Builder
	for b.Len() < n {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(word)
	}
	return b.String()[:n]
}
