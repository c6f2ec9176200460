// Package chat provides the question and answer view for a single document.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/lectern/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/lectern/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/lectern/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/lectern/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/lectern/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driving"
)

// ErrNoAskService is returned when a question is submitted without an ask service.
var ErrNoAskService = errors.New("ask service not available")

// chromeHeight is the number of lines taken by header, input box and status bar.
const chromeHeight = 7

// exchange is one question and its outcome in the transcript.
type exchange struct {
	question string
	answer   *domain.Answer
	elapsed  time.Duration
	err      error
}

// Config holds the collaborators of the chat view.
type Config struct {
	Ask      driving.AskService
	Document driving.DocumentService
	Index    driving.IndexService

	// DocumentID is the document every question is asked against.
	DocumentID string

	// TopK is passed through to every question; zero means the default.
	TopK int

	// WarmUp loads the generation model when the view starts.
	WarmUp bool
}

// View is the chat view.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	ctx    context.Context
	cfg    Config

	input    *input.QuestionInput
	status   *status.Bar
	viewport viewport.Model
	spinner  spinner.Model

	title      string
	transcript []exchange
	pending    string
	showHelp   bool

	width  int
	height int
	ready  bool
}

// NewView creates a new chat view.
func NewView(s *styles.Styles, cfg Config) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	km := keymap.DefaultKeyMap()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Muted

	return &View{
		styles:   s,
		keymap:   km,
		ctx:      context.Background(),
		cfg:      cfg,
		input:    input.NewQuestionInput(s),
		status:   status.NewBar(s, km),
		viewport: viewport.New(80, 10),
		spinner:  sp,
		title:    cfg.DocumentID,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the document and, when configured, warms up the model.
func (v *View) Init() tea.Cmd {
	cmds := []tea.Cmd{v.input.Init(), v.loadDocument()}
	if v.cfg.WarmUp && v.cfg.Ask != nil {
		v.status.SetState(status.StateThinking)
		v.status.SetMessage("Warming up model...")
		cmds = append(cmds, v.warmUp(), v.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.DocumentLoaded:
		v.handleDocumentLoaded(msg)
		return v, nil

	case messages.WarmUpCompleted:
		if v.pending != "" {
			return v, nil
		}
		if msg.Err != nil {
			v.status.SetState(status.StateReady)
			v.status.SetMessage("model not loaded: " + msg.Err.Error())
			return v, nil
		}
		v.status.SetState(status.StateReady)
		v.status.SetMessage("")
		return v, nil

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, v.input.Focus()

	case spinner.TickMsg:
		if v.status.State() != status.StateThinking {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, v.keymap.Help):
		v.showHelp = !v.showHelp
		return v, nil

	case keymap.Matches(keyStr, v.keymap.ScrollUp), keymap.Matches(keyStr, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd

	case keymap.Matches(keyStr, v.keymap.Clear):
		v.input.Reset()
		return v, nil

	case keymap.Matches(keyStr, v.keymap.Submit):
		return v.submit()
	}

	if v.pending != "" {
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit sends the typed question. Only one question is in flight at a time.
func (v *View) submit() (*View, tea.Cmd) {
	question := strings.TrimSpace(v.input.Value())
	if question == "" || v.pending != "" {
		return v, nil
	}

	v.pending = question
	v.input.Reset()
	v.input.Blur()
	v.status.SetState(status.StateThinking)
	v.status.SetMessage("")
	v.refresh()

	return v, tea.Batch(v.ask(question), v.spinner.Tick)
}

func (v *View) ask(question string) tea.Cmd {
	return func() tea.Msg {
		if v.cfg.Ask == nil {
			return messages.AnswerReceived{Question: question, Err: ErrNoAskService}
		}

		start := time.Now()
		answer, err := v.cfg.Ask.Ask(v.ctx, domain.AskRequest{
			DocumentID: v.cfg.DocumentID,
			Question:   question,
			TopK:       v.cfg.TopK,
		})
		return messages.AnswerReceived{
			Question: question,
			Answer:   answer,
			Elapsed:  time.Since(start),
			Err:      err,
		}
	}
}

func (v *View) loadDocument() tea.Cmd {
	return func() tea.Msg {
		var msg messages.DocumentLoaded
		if v.cfg.Document != nil {
			doc, err := v.cfg.Document.Get(v.ctx, v.cfg.DocumentID)
			if err != nil {
				return messages.DocumentLoaded{Err: err}
			}
			msg.Document = doc
		}
		if v.cfg.Index != nil {
			n, err := v.cfg.Index.ChunkCount(v.ctx, v.cfg.DocumentID)
			if err != nil {
				return messages.DocumentLoaded{Document: msg.Document, Err: err}
			}
			msg.Chunks = n
		}
		return msg
	}
}

func (v *View) warmUp() tea.Cmd {
	return func() tea.Msg {
		return messages.WarmUpCompleted{Err: v.cfg.Ask.WarmUp(v.ctx)}
	}
}

func (v *View) handleDocumentLoaded(msg messages.DocumentLoaded) {
	if msg.Err != nil {
		v.status.SetState(status.StateError)
		v.status.SetMessage(msg.Err.Error())
		return
	}

	if msg.Document != nil && msg.Document.Title != "" {
		v.title = msg.Document.Title
	}
	v.status.SetChunks(msg.Chunks)
	if v.status.State() == status.StateLoading {
		v.status.SetState(status.StateReady)
	}
	if msg.Chunks == 0 && v.cfg.Index != nil {
		v.status.SetMessage("no chunks indexed; run 'lectern reindex " + v.cfg.DocumentID + "'")
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.pending = ""
	v.transcript = append(v.transcript, exchange{
		question: msg.Question,
		answer:   msg.Answer,
		elapsed:  msg.Elapsed,
		err:      msg.Err,
	})

	if msg.Err != nil {
		v.status.SetState(status.StateError)
		v.status.SetMessage(msg.Err.Error())
	} else {
		v.status.SetState(status.StateReady)
		v.status.SetMessage("")
		if msg.Answer != nil && msg.Answer.Model != "" {
			v.status.SetModel(msg.Answer.Model)
		}
	}
	v.refresh()
}

// refresh re-renders the transcript into the viewport and scrolls to the end.
func (v *View) refresh() {
	v.viewport.SetContent(v.renderTranscript())
	v.viewport.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.transcript) == 0 && v.pending == "" {
		return v.styles.Muted.Render("Ask anything about this document. Answers cite the chunks they use.")
	}

	var b strings.Builder
	for i := range v.transcript {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(v.renderExchange(&v.transcript[i]))
	}
	if v.pending != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(v.styles.Question.Render("Q: " + v.pending))
		b.WriteString("\n")
		b.WriteString(v.spinner.View() + v.styles.Muted.Render(" thinking..."))
		b.WriteString("\n")
	}
	return b.String()
}

func (v *View) renderExchange(e *exchange) string {
	var b strings.Builder
	b.WriteString(v.styles.Question.Render("Q: " + e.question))
	b.WriteString("\n")

	if e.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + e.err.Error()))
		b.WriteString("\n")
		return b.String()
	}
	if e.answer == nil {
		return b.String()
	}

	b.WriteString(v.styles.Normal.Width(max(20, v.width-2)).Render(e.answer.Answer))
	b.WriteString("\n")

	if e.answer.Method == domain.AnswerMethodKeywordFallback && e.answer.Note != "" {
		b.WriteString(v.styles.Fallback.Render(e.answer.Note))
		b.WriteString("\n")
	}

	if len(e.answer.Citations) > 0 {
		refs := make([]string, 0, len(e.answer.Citations))
		for _, c := range e.answer.Citations {
			refs = append(refs, fmt.Sprintf("[#%d] chunk %d (%.2f)", c.ID, c.ChunkIndex, c.Score))
		}
		b.WriteString(v.styles.Citation.Render(strings.Join(refs, "  ")))
		b.WriteString("\n")
	}

	b.WriteString(v.styles.Method(e.answer.Method).Render(e.answer.Method.String()))
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf(" · top %d · %s",
		e.answer.TopK, e.elapsed.Round(10*time.Millisecond))))
	b.WriteString("\n")
	return b.String()
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Loading..."
	}

	header := v.styles.Title.Render("lectern") + v.styles.Muted.Render(" · "+v.title)

	body := v.viewport.View()
	if v.showHelp {
		body = v.renderHelp()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		body,
		v.input.View(),
		v.status.View(),
	)
}

func (v *View) renderHelp() string {
	lines := []string{v.styles.Title.Render("Keys"), ""}
	for _, b := range v.status.Help() {
		h := b.Help()
		lines = append(lines, fmt.Sprintf("  %-8s %s", h.Key, h.Desc))
	}
	return v.styles.Help.Render(strings.Join(lines, "\n"))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.viewport.Width = width
	v.viewport.Height = max(3, height-chromeHeight)
	v.input.SetWidth(width)
	v.status.SetWidth(width)
	v.refresh()
}

// Width returns the view width.
func (v *View) Width() int {
	return v.width
}

// Height returns the view height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view has received dimensions.
func (v *View) Ready() bool {
	return v.ready
}

// Title returns the document title shown in the header.
func (v *View) Title() string {
	return v.title
}

// Pending returns the question awaiting an answer, if any.
func (v *View) Pending() string {
	return v.pending
}

// Exchanges returns the number of answered questions.
func (v *View) Exchanges() int {
	return len(v.transcript)
}

// Status returns the status bar.
func (v *View) Status() *status.Bar {
	return v.status
}

// Input returns the question input.
func (v *View) Input() *input.QuestionInput {
	return v.input
}
