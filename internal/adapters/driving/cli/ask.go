package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

var askCmd = &cobra.Command{
	Use:   "ask [doc-id] [question]",
	Short: "Answer a question from one document",
	Long: `Retrieves the chunks of the document most similar to the question and
asks the language model to answer using only those chunks. When generation
times out, a keyword search over the document text answers instead.`,
	Args: cobra.ExactArgs(2),
	RunE: runAsk,
}

var (
	askTopK int
	askJSON bool
)

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", domain.DefaultTopK,
		fmt.Sprintf("Number of chunks to use (%d-%d)", domain.MinTopK, domain.MaxTopK))
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askService == nil {
		return errNotConfigured("ask")
	}

	answer, err := askService.Ask(cmd.Context(), domain.AskRequest{
		DocumentID: args[0],
		Question:   args[1],
		TopK:       askTopK,
	})
	if err != nil {
		return fmt.Errorf("failed to answer: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}
	outputAnswerText(cmd, answer)
	return nil
}

func outputAnswerJSON(cmd *cobra.Command, answer *domain.Answer) error {
	if answer.Citations == nil {
		answer.Citations = []domain.Citation{}
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(answer)
}

func outputAnswerText(cmd *cobra.Command, answer *domain.Answer) {
	cmd.Println(answer.Answer)
	cmd.Println()

	if answer.Note != "" {
		cmd.Printf("Note: %s\n", answer.Note)
	}

	if len(answer.Citations) > 0 {
		cmd.Println("Citations:")
		for _, c := range answer.Citations {
			cmd.Printf("  [#%d] chunk %d (score %.3f)\n", c.ID, c.ChunkIndex, c.Score)
		}
	}

	model := answer.Model
	if model == "" {
		model = "none"
	}
	cmd.Printf("Method: %s, top %d, model %s\n", answer.Method, answer.TopK, model)
}
