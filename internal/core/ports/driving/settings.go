package driving

import "github.com/custodia-labs/lectern/internal/core/domain"

// SettingsService reads and edits the persisted configuration.
type SettingsService interface {
	// Get layers LECTERN_* environment overrides and stored values over the defaults.
	Get() (*domain.AppSettings, error)

	Save(settings *domain.AppSettings) error

	// Set parses value for the dotted key ("generation.top_k") and stores it.
	// Unknown keys and unparsable values are rejected.
	Set(key, value string) error

	// Unset drops a key so the default applies again.
	Unset(key string) error

	// Keys lists every key Set accepts.
	Keys() []string

	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig and ValidateLLMConfig ping the configured
	// provider. Unconfigured providers pass.
	ValidateEmbeddingConfig() error
	ValidateLLMConfig() error
}
