// Package cli provides the lectern command line interface built on cobra.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lectern/internal/core/ports/driving"
	"github.com/custodia-labs/lectern/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// skipBootstrap marks commands that run without services.
const skipBootstrap = "lectern/skip-bootstrap"

// Options carries the global flags to the bootstrap function.
type Options struct {
	// DataDir overrides where config, prompts and the database live.
	DataDir string

	// Verbose enables debug logging.
	Verbose bool
}

// Services holds the driving ports used by commands.
type Services struct {
	Document driving.DocumentService
	Index    driving.IndexService
	Ask      driving.AskService
	Health   driving.HealthService
	Settings driving.SettingsService

	// Metrics is served on /metrics by 'mcp serve --http'. Optional.
	Metrics http.Handler

	// Close releases stores and clients. Optional.
	Close func() error
}

// BootstrapFunc builds services once the global flags are parsed.
type BootstrapFunc func(ctx context.Context, opts Options) (*Services, error)

var (
	documentService driving.DocumentService
	indexService    driving.IndexService
	askService      driving.AskService
	healthService   driving.HealthService
	settingsService driving.SettingsService
	metricsHandler  http.Handler
	closeServices   func() error

	bootstrap BootstrapFunc
	rootOpts  Options
)

var rootCmd = &cobra.Command{
	Use:   "lectern",
	Short: "Ask questions about your course documents",
	Long: `lectern indexes course documents into embedded chunks and answers
questions using only the content of one document, citing the chunks used.

Get started:
  lectern document add notes.md
  lectern ask <doc-id> "What is osmosis?"`,
	SilenceUsage:      true,
	PersistentPreRunE: runBootstrap,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootOpts.Verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&rootOpts.DataDir, "data-dir", "", "Data directory (default ~/.lectern)")
}

// SetVersion sets the version reported by 'lectern version'.
func SetVersion(v string) {
	version = v
}

// SetBootstrap sets the function that wires services before a command runs.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetServices installs the services used by commands.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	documentService = s.Document
	indexService = s.Index
	askService = s.Ask
	healthService = s.Health
	settingsService = s.Settings
	metricsHandler = s.Metrics
	closeServices = s.Close
}

// Execute runs the root command and releases services afterwards.
func Execute(ctx context.Context) error {
	defer shutdown()
	return rootCmd.ExecuteContext(ctx)
}

func runBootstrap(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(rootOpts.Verbose)

	if bootstrap == nil || cmd.Annotations[skipBootstrap] == "true" || cmd.Name() == "help" {
		return nil
	}

	svcs, err := bootstrap(cmd.Context(), rootOpts)
	if err != nil {
		return fmt.Errorf("initialise: %w", err)
	}
	SetServices(svcs)
	return nil
}

func shutdown() {
	if closeServices == nil {
		return
	}
	if err := closeServices(); err != nil {
		logger.Warn("close: %v", err)
	}
	closeServices = nil
	logger.Sync()
}

// errNotConfigured reports a service the bootstrap did not provide.
func errNotConfigured(name string) error {
	return errors.New(name + " service not configured")
}
