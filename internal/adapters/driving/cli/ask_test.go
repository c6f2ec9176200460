package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

func TestAskCmd_RequiresTwoArgs(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "ask", "doc-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestAskCmd_Text(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.ask.answer = &domain.Answer{
		Answer:    "Mitochondria produce ATP [#1].",
		Citations: []domain.Citation{{ID: 1, ChunkIndex: 3, Score: 0.912}},
		TopK:      2,
		Model:     "llama3.1:8b",
		Method:    domain.AnswerMethodRAG,
	}

	out, err := execute(t, "ask", "doc-1", "What do mitochondria do?", "-k", "2")

	require.NoError(t, err)
	assert.Equal(t, domain.AskRequest{DocumentID: "doc-1", Question: "What do mitochondria do?", TopK: 2}, ts.ask.lastReq)
	assert.Contains(t, out, "Mitochondria produce ATP [#1].")
	assert.Contains(t, out, "[#1] chunk 3 (score 0.912)")
	assert.Contains(t, out, "Method: rag, top 2, model llama3.1:8b")
}

func TestAskCmd_DefaultTopK(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.ask.answer = &domain.Answer{Answer: "x", Method: domain.AnswerMethodRAG}

	_, err := execute(t, "ask", "doc-1", "q")

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTopK, ts.ask.lastReq.TopK)
}

func TestAskCmd_FallbackNote(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.ask.answer = &domain.Answer{
		Answer: "Osmosis is the movement of water.",
		Method: domain.AnswerMethodKeywordFallback,
		Note:   "AI generation timed out",
	}

	out, err := execute(t, "ask", "doc-1", "osmosis?")

	require.NoError(t, err)
	assert.Contains(t, out, "Note: AI generation timed out")
	assert.Contains(t, out, "Method: keyword-fallback, top 0, model none")
	assert.NotContains(t, out, "Citations:")
}

func TestAskCmd_JSON(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.ask.answer = &domain.Answer{Answer: "Not sure.", TopK: 4, Method: domain.AnswerMethodRAG}

	out, err := execute(t, "ask", "doc-1", "q", "--json")

	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Not sure.", got["answer"])
	assert.Equal(t, []any{}, got["citations"])
	assert.Equal(t, float64(4), got["topK"])
	assert.Equal(t, "rag", got["method"])
}

func TestAskCmd_NoIndexedContent(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.ask.err = domain.ErrNoIndexedContent

	_, err := execute(t, "ask", "doc-1", "q")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoIndexedContent)
}
