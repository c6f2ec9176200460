package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View and change settings",
	Long: `View and change lectern settings. Values are stored in config.toml in
the data directory; LECTERN_* environment variables override them.`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a setting",
	Long: `Set a setting by its dotted key, for example:

  lectern settings set llm.model llama3.1:8b
  lectern settings set generation.timeout 60s
  lectern settings set store.backend qdrant

Run 'lectern settings keys' to list every key.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsUnsetCmd = &cobra.Command{
	Use:   "unset [key]",
	Short: "Reset a setting to its default",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsUnset,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List setting keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure the embedding provider interactively",
	Args:  cobra.NoArgs,
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure the language model interactively",
	Args:  cobra.NoArgs,
	RunE:  runSettingsLLM,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsUnsetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())
	cmd.Printf("  Concurrency: %d\n", settings.Embedding.Concurrency)
	if settings.Embedding.RequestsPerSecond > 0 {
		cmd.Printf("  Requests/second: %g\n", settings.Embedding.RequestsPerSecond)
	}
	cmd.Println()

	cmd.Println("[LLM]")
	printProvider(cmd, settings.LLM.Provider, settings.LLM.Model,
		settings.LLM.BaseURL, settings.LLM.APIKey, settings.LLM.IsConfigured())
	cmd.Println()

	cmd.Println("[Generation]")
	cmd.Printf("  Temperature: %g\n", settings.Generation.Temperature)
	cmd.Printf("  Max tokens: %d\n", settings.Generation.MaxTokens)
	cmd.Printf("  Top K: %d\n", settings.Generation.TopK)
	cmd.Printf("  Top P: %g\n", settings.Generation.TopP)
	cmd.Printf("  Timeout: %s\n", settings.Generation.Timeout)
	cmd.Println()

	cmd.Println("[Chunker]")
	cmd.Printf("  Max chars: %d\n", settings.Chunking.MaxChars)
	cmd.Printf("  Min chars: %d\n", settings.Chunking.MinChars)
	cmd.Printf("  Overlap ratio: %g\n", settings.Chunking.OverlapRatio)
	cmd.Println()

	cmd.Println("[Store]")
	cmd.Printf("  Backend: %s\n", settings.Store.Backend)
	if settings.Store.DataDir != "" {
		cmd.Printf("  Data dir: %s\n", settings.Store.DataDir)
	}
	if settings.Store.Backend == domain.StoreBackendQdrant {
		cmd.Printf("  Qdrant: %s:%d/%s\n", settings.Store.QdrantHost, settings.Store.QdrantPort, settings.Store.QdrantCollection)
		if settings.Store.QdrantAPIKey != "" {
			cmd.Printf("  Qdrant API key: %s\n", maskAPIKey(settings.Store.QdrantAPIKey))
		}
	}

	return nil
}

func printProvider(cmd *cobra.Command, p domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	cmd.Printf("  Provider: %s\n", p.Description())
	cmd.Printf("  Model: %s\n", model)
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if p.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}

	value := args[1]
	if strings.HasSuffix(args[0], "api_key") {
		value = maskAPIKey(value)
	}
	cmd.Printf("%s = %s\n", args[0], value)
	return nil
}

func runSettingsUnset(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	if err := settingsService.Unset(args[0]); err != nil {
		return fmt.Errorf("failed to unset %s: %w", args[0], err)
	}

	cmd.Printf("%s reset to default\n", args[0])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	for _, k := range settingsService.Keys() {
		cmd.Println(k)
	}
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureProvider(cmd, reader, providerPrompt{
		label:     "Embedding",
		keyPrefix: "embedding",
		providers: domain.AllEmbeddingProviders(),
		defaults:  domain.DefaultEmbeddingModels(),
		validate:  settingsService.ValidateEmbeddingConfig,
	})
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureProvider(cmd, reader, providerPrompt{
		label:     "LLM",
		keyPrefix: "llm",
		providers: domain.AllLLMProviders(),
		defaults:  domain.DefaultLLMModels(),
		validate:  settingsService.ValidateLLMConfig,
	})
}

type providerPrompt struct {
	label     string
	keyPrefix string
	providers []domain.AIProvider
	defaults  map[domain.AIProvider]string
	validate  func() error
}

func configureProvider(cmd *cobra.Command, reader *bufio.Reader, p providerPrompt) error {
	cmd.Printf("Select %s Provider\n", p.label)
	for i, provider := range p.providers {
		cmd.Printf("  %d. %s\n", i+1, provider.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(p.providers), 1)
	selected := p.providers[idx-1]

	defaultModel := p.defaults[selected]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selected.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	values := [][2]string{
		{p.keyPrefix + ".provider", selected.String()},
		{p.keyPrefix + ".model", model},
	}
	if apiKey != "" {
		values = append(values, [2]string{p.keyPrefix + ".api_key", apiKey})
	}
	for _, kv := range values {
		if err := settingsService.Set(kv[0], kv[1]); err != nil {
			return fmt.Errorf("failed to configure %s provider: %w", strings.ToLower(p.label), err)
		}
	}

	cmd.Print("Validating configuration... ")
	if err := p.validate(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("%s configuration validation failed: %w", strings.ToLower(p.label), err)
	}
	cmd.Println("OK")

	cmd.Printf("%s provider configured: %s (%s)\n", p.label, selected.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when stdin is a terminal.
func readPassword(reader *bufio.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
