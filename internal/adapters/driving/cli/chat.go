package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/lectern/internal/adapters/driving/tui"
	"github.com/custodia-labs/lectern/internal/core/domain"
)

// chatCmd represents the chat command.
var chatCmd = &cobra.Command{
	Use:   "chat [doc-id]",
	Short: "Chat with a document in the terminal UI",
	Long: `Launch an interactive terminal session for asking questions about
one document. Each answer lists the chunks it cites.

Controls:
  Enter      - Ask
  Esc        - Clear the question
  PgUp/PgDn  - Scroll the transcript
  F1         - Toggle help
  Ctrl+C     - Quit`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

var (
	chatTopK   int
	chatWarmUp bool
)

func init() {
	chatCmd.Flags().IntVarP(&chatTopK, "top-k", "k", domain.DefaultTopK, "Number of chunks per question")
	chatCmd.Flags().BoolVar(&chatWarmUp, "warmup", true, "Load the generation model before the first question")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := newChatApp(args[0])
	if err != nil {
		return err
	}
	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat error: %w", err)
	}
	return nil
}

func newChatApp(documentID string) (*tui.App, error) {
	ports := &tui.Ports{
		Ask:      askService,
		Document: documentService,
		Index:    indexService,
	}

	app, err := tui.NewApp(ports, tui.Options{
		DocumentID: documentID,
		TopK:       chatTopK,
		WarmUp:     chatWarmUp,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}
	return app, nil
}
