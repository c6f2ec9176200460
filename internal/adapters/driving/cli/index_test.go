package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

func TestReindexCmd_Executes(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.index.count = 14

	out, err := execute(t, "reindex", "doc-1")

	require.NoError(t, err)
	assert.Equal(t, "doc-1", ts.index.lastID)
	assert.Equal(t, domain.ChunkOptions{}, ts.index.lastOpts)
	assert.Contains(t, out, "Indexed 14 chunks for doc-1")
}

func TestReindexCmd_Options(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "reindex", "doc-1", "--max-chars", "800", "--min-chars", "200", "--overlap-ratio", "0.25")

	require.NoError(t, err)
	assert.Equal(t, domain.ChunkOptions{MaxChars: 800, MinChars: 200, OverlapRatio: 0.25}, ts.index.lastOpts)
}

func TestReindexCmd_OverlapRatioOutOfRange(t *testing.T) {
	for _, ratio := range []string{"0", "-0.2", "1"} {
		t.Run(ratio, func(t *testing.T) {
			ts, cleanup := setupTestServices()
			defer cleanup()

			_, err := execute(t, "reindex", "doc-1", "--overlap-ratio="+ratio)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, ts.index.lastID)
		})
	}
}

func TestReindexCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.index.err = domain.ErrEmbeddingService

	_, err := execute(t, "reindex", "doc-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingService)
}

func TestChunksCmd_Count(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "chunks", "doc-1", "--count")

	require.NoError(t, err)
	assert.Equal(t, "7\n", out)
}

func TestChunksCmd_List(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.index.chunks = []domain.Chunk{
		{DocumentID: "doc-1", Index: 0, Text: "Cells are the unit\nof life.", TokensApprox: 7},
		{DocumentID: "doc-1", Index: 1, Text: "Mitochondria produce ATP.", TokensApprox: 6},
	}

	out, err := execute(t, "chunks", "doc-1")

	require.NoError(t, err)
	assert.Contains(t, out, "[0] 27 chars, ~7 tokens")
	assert.Contains(t, out, "Cells are the unit of life.")
	assert.Contains(t, out, "[1] 25 chars, ~6 tokens")
	assert.Contains(t, out, "Total: 2 chunks")
}

func TestChunksCmd_Empty(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "chunks", "doc-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Run: lectern reindex doc-1")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "a b", preview("a\nb", 10))
	assert.Equal(t, "abc...", preview("abcdef", 3))
	assert.Equal(t, "héllo", preview("héllo", 5))
}
