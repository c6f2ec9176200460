package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/lectern/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/lectern/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lectern/internal/adapters/driving/tui/views/chat"
)

// Options configures a chat session.
type Options struct {
	// DocumentID is the document the session asks about.
	DocumentID string

	// TopK is the number of chunks per question; zero means the default.
	TopK int

	// WarmUp loads the generation model before the first question.
	WarmUp bool
}

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports    *Ports
	ctx      context.Context
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	chatView *chat.View

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports, opts Options) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	if opts.DocumentID == "" {
		return nil, fmt.Errorf("creating app: %w", ErrMissingDocumentID)
	}

	s := styles.DefaultStyles()
	chatView := chat.NewView(s, chat.Config{
		Ask:        ports.Ask,
		Document:   ports.Document,
		Index:      ports.Index,
		DocumentID: opts.DocumentID,
		TopK:       opts.TopK,
		WarmUp:     opts.WarmUp,
	})

	return &App{
		ports:    ports,
		ctx:      context.Background(),
		styles:   s,
		keymap:   keymap.DefaultKeyMap(),
		chatView: chatView,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("lectern - "+a.chatView.Title()),
		a.chatView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if keymap.Matches(msg.String(), a.keymap.Quit) {
			return a, tea.Quit
		}
	}

	var cmd tea.Cmd
	a.chatView, cmd = a.chatView.Update(msg)
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}
	return a.chatView.View()
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.chatView.SetDimensions(width, height)
}

// Width returns the terminal width.
func (a *App) Width() int {
	return a.width
}

// Height returns the terminal height.
func (a *App) Height() int {
	return a.height
}

// Ready returns whether the app has received dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// Chat returns the chat view.
func (a *App) Chat() *chat.View {
	return a.chatView
}
