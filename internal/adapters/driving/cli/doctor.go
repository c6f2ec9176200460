package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the embedding service, language model and store",
	Long: `Pings every configured collaborator and reports whether it is reachable
and whether its model is available. Exits non-zero when a check fails.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	if healthService == nil {
		return errNotConfigured("health")
	}

	checks := healthService.Check(cmd.Context())

	failed := 0
	for _, c := range checks {
		mark := "ok"
		if !c.OK {
			mark = "FAIL"
			failed++
		}
		cmd.Printf("  [%-4s] %-10s %s", mark, c.Name, c.Target)
		if c.Detail != "" {
			cmd.Printf(" (%s)", c.Detail)
		}
		cmd.Println()
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(checks))
	}
	cmd.Println("All checks passed.")
	return nil
}
