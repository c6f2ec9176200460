package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex [doc-id]",
	Short: "Rebuild the chunk index of a document",
	Long: `Splits the document into chunks, embeds every chunk and replaces the
stored chunk set. Nothing is replaced unless every embedding succeeds.`,
	Args: cobra.ExactArgs(1),
	RunE: runReindex,
}

var chunksCmd = &cobra.Command{
	Use:   "chunks [doc-id]",
	Short: "List the indexed chunks of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runChunks,
}

var (
	reindexOpts domain.ChunkOptions
	chunksCount bool
)

func init() {
	reindexCmd.Flags().IntVar(&reindexOpts.MaxChars, "max-chars", 0,
		fmt.Sprintf("Hard upper bound on chunk length (default %d)", domain.DefaultMaxChars))
	reindexCmd.Flags().IntVar(&reindexOpts.MinChars, "min-chars", 0,
		fmt.Sprintf("Soft lower bound on chunk length (default %d)", domain.DefaultMinChars))
	reindexCmd.Flags().Float64Var(&reindexOpts.OverlapRatio, "overlap-ratio", 0,
		fmt.Sprintf("Fraction of max-chars carried into the next chunk, between 0 and 1 exclusive (default %.1f)", domain.DefaultOverlapRatio))

	chunksCmd.Flags().BoolVar(&chunksCount, "count", false, "Only print the number of chunks")

	rootCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(chunksCmd)
}

func runReindex(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errNotConfigured("index")
	}

	if cmd.Flags().Changed("overlap-ratio") && !domain.ValidOverlapRatio(reindexOpts.OverlapRatio) {
		return fmt.Errorf("%w: --overlap-ratio must be greater than 0 and less than 1", domain.ErrInvalidInput)
	}

	n, err := indexService.Reindex(cmd.Context(), args[0], reindexOpts)
	if err != nil {
		return fmt.Errorf("failed to reindex: %w", err)
	}

	cmd.Printf("Indexed %d chunks for %s\n", n, args[0])
	return nil
}

func runChunks(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errNotConfigured("index")
	}

	if chunksCount {
		n, err := indexService.ChunkCount(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to count chunks: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), n)
		return err
	}

	chunks, err := indexService.Chunks(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to list chunks: %w", err)
	}

	if len(chunks) == 0 {
		cmd.Printf("No chunks for %s. Run: lectern reindex %s\n", args[0], args[0])
		return nil
	}

	for i := range chunks {
		cmd.Printf("[%d] %d chars, ~%d tokens\n", chunks[i].Index, len([]rune(chunks[i].Text)), chunks[i].TokensApprox)
		cmd.Printf("    %s\n\n", preview(chunks[i].Text, 160))
	}
	cmd.Printf("Total: %d chunks\n", len(chunks))
	return nil
}

// preview returns the first n runes of s on a single line.
func preview(s string, n int) string {
	runes := []rune(s)
	for i, r := range runes {
		if r == '\n' || r == '\r' || r == '\t' {
			runes[i] = ' '
		}
	}
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n]) + "..."
}
