package chat

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lectern/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/lectern/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driving"
)

type mockAsk struct {
	answer   *domain.Answer
	err      error
	warmErr  error
	requests []domain.AskRequest
}

func (m *mockAsk) Ask(_ context.Context, req domain.AskRequest) (*domain.Answer, error) {
	m.requests = append(m.requests, req)
	return m.answer, m.err
}

func (m *mockAsk) WarmUp(_ context.Context) error {
	return m.warmErr
}

type mockDocuments struct {
	driving.DocumentService
	doc *domain.Document
	err error
}

func (m *mockDocuments) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.doc, m.err
}

type mockIndex struct {
	driving.IndexService
	count int
	err   error
}

func (m *mockIndex) ChunkCount(_ context.Context, _ string) (int, error) {
	return m.count, m.err
}

func newTestView(ask *mockAsk) *View {
	v := NewView(nil, Config{
		Ask:        ask,
		Document:   &mockDocuments{doc: &domain.Document{ID: "doc-1", Title: "Cell Biology"}},
		Index:      &mockIndex{count: 9},
		DocumentID: "doc-1",
		TopK:       3,
	})
	v.SetDimensions(100, 30)
	return v
}

func typeText(v *View, text string) *View {
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return v
}

func TestNewView(t *testing.T) {
	v := NewView(nil, Config{DocumentID: "doc-1"})

	require.NotNil(t, v)
	assert.Equal(t, "doc-1", v.Title())
	assert.False(t, v.Ready())
	assert.Equal(t, "Loading...", v.View())
	assert.Equal(t, status.StateLoading, v.Status().State())
}

func TestView_SetDimensions(t *testing.T) {
	v := NewView(nil, Config{DocumentID: "doc-1"})

	v.SetDimensions(120, 40)

	assert.True(t, v.Ready())
	assert.Equal(t, 120, v.Width())
	assert.Equal(t, 40, v.Height())
	assert.Equal(t, 40-chromeHeight, v.viewport.Height)
}

func TestView_LoadDocument(t *testing.T) {
	v := newTestView(&mockAsk{})

	msg := v.loadDocument()()
	loaded, ok := msg.(messages.DocumentLoaded)
	require.True(t, ok)
	require.NoError(t, loaded.Err)
	assert.Equal(t, 9, loaded.Chunks)

	v, _ = v.Update(loaded)
	assert.Equal(t, "Cell Biology", v.Title())
	assert.Equal(t, status.StateReady, v.Status().State())
	assert.Equal(t, 9, v.Status().Chunks())
	assert.Contains(t, v.View(), "Cell Biology")
}

func TestView_LoadDocument_NotFound(t *testing.T) {
	v := NewView(nil, Config{
		Ask:        &mockAsk{},
		Document:   &mockDocuments{err: domain.ErrNotFound},
		DocumentID: "missing",
	})

	msg := v.loadDocument()()
	v, _ = v.Update(msg)

	assert.Equal(t, status.StateError, v.Status().State())
	assert.Contains(t, v.Status().Message(), "not found")
}

func TestView_LoadDocument_NoChunks(t *testing.T) {
	v := NewView(nil, Config{
		Ask:        &mockAsk{},
		Index:      &mockIndex{count: 0},
		DocumentID: "doc-1",
	})

	v, _ = v.Update(v.loadDocument()())

	assert.Contains(t, v.Status().Message(), "lectern reindex doc-1")
}

func TestView_SubmitQuestion(t *testing.T) {
	ask := &mockAsk{answer: &domain.Answer{
		Answer:    "Mitochondria produce ATP [#1].",
		Citations: []domain.Citation{{ID: 1, ChunkIndex: 4, Score: 0.87}},
		TopK:      3,
		Model:     "llama3.1:8b",
		Method:    domain.AnswerMethodRAG,
	}}
	v := newTestView(ask)

	v = typeText(v, "What do mitochondria do?")
	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	assert.Equal(t, "What do mitochondria do?", v.Pending())
	assert.Equal(t, "", v.Input().Value())
	assert.False(t, v.Input().Focused())
	assert.Equal(t, status.StateThinking, v.Status().State())

	answer := v.ask(v.Pending())()
	v, _ = v.Update(answer)

	require.Len(t, ask.requests, 1)
	assert.Equal(t, "doc-1", ask.requests[0].DocumentID)
	assert.Equal(t, 3, ask.requests[0].TopK)
	assert.Equal(t, "", v.Pending())
	assert.Equal(t, 1, v.Exchanges())
	assert.Equal(t, status.StateReady, v.Status().State())

	transcript := v.renderTranscript()
	assert.Contains(t, transcript, "Q: What do mitochondria do?")
	assert.Contains(t, transcript, "Mitochondria produce ATP")
	assert.Contains(t, transcript, "[#1] chunk 4 (0.87)")
}

func TestView_SubmitIgnoredWhilePending(t *testing.T) {
	v := newTestView(&mockAsk{})

	v = typeText(v, "first")
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v = typeText(v, "second")
	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Equal(t, "first", v.Pending())
}

func TestView_SubmitEmptyQuestion(t *testing.T) {
	v := newTestView(&mockAsk{})

	v = typeText(v, "   ")
	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Equal(t, "", v.Pending())
}

func TestView_KeywordFallbackAnswer(t *testing.T) {
	v := newTestView(&mockAsk{})

	v, _ = v.Update(messages.AnswerReceived{
		Question: "osmosis?",
		Answer: &domain.Answer{
			Answer: "Osmosis is the movement of water...",
			Method: domain.AnswerMethodKeywordFallback,
			Note:   "AI generation timed out",
		},
	})

	transcript := v.renderTranscript()
	assert.Contains(t, transcript, "AI generation timed out")
	assert.Contains(t, transcript, "keyword-fallback")
}

func TestView_AnswerError(t *testing.T) {
	v := newTestView(&mockAsk{})

	v, _ = v.Update(messages.AnswerReceived{Question: "q", Err: domain.ErrNoIndexedContent})

	assert.Equal(t, status.StateError, v.Status().State())
	assert.Contains(t, v.renderTranscript(), "Error:")
}

func TestView_NoAskService(t *testing.T) {
	v := NewView(nil, Config{DocumentID: "doc-1"})

	msg := v.ask("q")()
	received, ok := msg.(messages.AnswerReceived)
	require.True(t, ok)
	assert.ErrorIs(t, received.Err, ErrNoAskService)
}

func TestView_WarmUp(t *testing.T) {
	ask := &mockAsk{warmErr: errors.New("connection refused")}
	v := NewView(nil, Config{Ask: ask, DocumentID: "doc-1", WarmUp: true})

	cmd := v.Init()
	require.NotNil(t, cmd)
	assert.Equal(t, status.StateThinking, v.Status().State())

	v, _ = v.Update(v.warmUp()())
	assert.Equal(t, status.StateReady, v.Status().State())
	assert.Contains(t, v.Status().Message(), "connection refused")
}

func TestView_ClearAndHelp(t *testing.T) {
	v := newTestView(&mockAsk{})

	v = typeText(v, "draft")
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, "", v.Input().Value())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyF1})
	assert.Contains(t, v.View(), "Keys")

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyF1})
	assert.NotContains(t, v.View(), "Keys")
}

func TestView_EmptyTranscriptHint(t *testing.T) {
	v := newTestView(&mockAsk{})

	assert.Contains(t, v.renderTranscript(), "Ask anything")
}
