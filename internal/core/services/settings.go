package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
	"github.com/custodia-labs/lectern/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyEmbedConcurrency = "embedding.concurrency"
	keyEmbedRPS         = "embedding.requests_per_second"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyGenTemperature   = "generation.temperature"
	keyGenMaxTokens     = "generation.max_tokens"
	keyGenTopK          = "generation.top_k"
	keyGenTopP          = "generation.top_p"
	keyGenTimeout       = "generation.timeout"
	keyStoreBackend     = "store.backend"
	keyStoreDataDir     = "store.data_dir"
	keyQdrantHost       = "store.qdrant_host"
	keyQdrantPort       = "store.qdrant_port"
	keyQdrantAPIKey     = "store.qdrant_api_key"
	keyQdrantCollection = "store.qdrant_collection"
	keyChunkMaxChars    = "chunker." + domain.ChunkKeyMaxChars
	keyChunkMinChars    = "chunker." + domain.ChunkKeyMinChars
	keyChunkOverlap     = "chunker." + domain.ChunkKeyOverlapRatio
)

// EnvPrefix prefixes environment variables that override config keys.
// "embedding.base_url" is overridden by LECTERN_EMBEDDING_BASE_URL.
const EnvPrefix = "LECTERN_"

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindDuration
	kindProvider
	kindBackend
)

var settingKinds = map[string]valueKind{
	keyEmbedProvider:    kindProvider,
	keyEmbedModel:       kindString,
	keyEmbedBaseURL:     kindString,
	keyEmbedAPIKey:      kindString,
	keyEmbedConcurrency: kindInt,
	keyEmbedRPS:         kindFloat,
	keyLLMProvider:      kindProvider,
	keyLLMModel:         kindString,
	keyLLMBaseURL:       kindString,
	keyLLMAPIKey:        kindString,
	keyGenTemperature:   kindFloat,
	keyGenMaxTokens:     kindInt,
	keyGenTopK:          kindInt,
	keyGenTopP:          kindFloat,
	keyGenTimeout:       kindDuration,
	keyStoreBackend:     kindBackend,
	keyStoreDataDir:     kindString,
	keyQdrantHost:       kindString,
	keyQdrantPort:       kindInt,
	keyQdrantAPIKey:     kindString,
	keyQdrantCollection: kindString,
	keyChunkMaxChars:    kindInt,
	keyChunkMinChars:    kindInt,
	keyChunkOverlap:     kindFloat,
}

// SettingsService manages application settings.
// Values resolve in order: environment override, config file, default.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		lookupEnv:   os.LookupEnv,
	}
}

// SetEnvLookup replaces the environment lookup. A nil func disables overrides.
func (s *SettingsService) SetEnvLookup(fn func(string) (string, bool)) {
	if fn == nil {
		fn = func(string) (string, bool) { return "", false }
	}
	s.lookupEnv = fn
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:             s.getString(keyEmbedModel, d.Embedding.Model),
			BaseURL:           s.getString(keyEmbedBaseURL, ""), // No default - adapters pick one
			APIKey:            s.getString(keyEmbedAPIKey, ""),
			Concurrency:       s.getInt(keyEmbedConcurrency, d.Embedding.Concurrency),
			RequestsPerSecond: s.getFloat(keyEmbedRPS, d.Embedding.RequestsPerSecond),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, d.LLM.Provider),
			Model:    s.getString(keyLLMModel, d.LLM.Model),
			BaseURL:  s.getString(keyLLMBaseURL, ""),
			APIKey:   s.getString(keyLLMAPIKey, ""),
		},
		Generation: domain.GenerationSettings{
			Temperature: s.getFloat(keyGenTemperature, d.Generation.Temperature),
			MaxTokens:   s.getInt(keyGenMaxTokens, d.Generation.MaxTokens),
			TopK:        s.getInt(keyGenTopK, d.Generation.TopK),
			TopP:        s.getFloat(keyGenTopP, d.Generation.TopP),
			Timeout:     s.getDuration(keyGenTimeout, d.Generation.Timeout),
		},
		Store: domain.StoreSettings{
			Backend:          s.getBackend(d.Store.Backend),
			DataDir:          s.getString(keyStoreDataDir, d.Store.DataDir),
			QdrantHost:       s.getString(keyQdrantHost, d.Store.QdrantHost),
			QdrantPort:       s.getInt(keyQdrantPort, d.Store.QdrantPort),
			QdrantAPIKey:     s.getString(keyQdrantAPIKey, ""),
			QdrantCollection: s.getString(keyQdrantCollection, d.Store.QdrantCollection),
		},
		Chunking: domain.ChunkOptions{
			MaxChars:     s.getInt(keyChunkMaxChars, d.Chunking.MaxChars),
			MinChars:     s.getInt(keyChunkMinChars, d.Chunking.MinChars),
			OverlapRatio: s.getFloat(keyChunkOverlap, d.Chunking.OverlapRatio),
		}.WithDefaults(),
	}

	// Cloud providers fall back to their conventional key variables.
	if settings.Embedding.APIKey == "" && settings.Embedding.Provider == domain.AIProviderOpenAI {
		settings.Embedding.APIKey = s.env("OPENAI_API_KEY")
	}
	if settings.LLM.APIKey == "" {
		switch settings.LLM.Provider {
		case domain.AIProviderOpenAI:
			settings.LLM.APIKey = s.env("OPENAI_API_KEY")
		case domain.AIProviderAnthropic:
			settings.LLM.APIKey = s.env("ANTHROPIC_API_KEY")
		}
	}

	return settings, nil
}

// Save persists application settings.
// API keys are only written when set, so keys supplied by the environment
// never end up in the config file by accident.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedConcurrency, settings.Embedding.Concurrency},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyGenTemperature, settings.Generation.Temperature},
		{keyGenMaxTokens, settings.Generation.MaxTokens},
		{keyGenTopK, settings.Generation.TopK},
		{keyGenTopP, settings.Generation.TopP},
		{keyGenTimeout, settings.Generation.Timeout.String()},
		{keyStoreBackend, settings.Store.Backend.String()},
		{keyStoreDataDir, settings.Store.DataDir},
		{keyQdrantHost, settings.Store.QdrantHost},
		{keyQdrantPort, settings.Store.QdrantPort},
		{keyQdrantCollection, settings.Store.QdrantCollection},
		{keyChunkMaxChars, settings.Chunking.MaxChars},
		{keyChunkMinChars, settings.Chunking.MinChars},
		{keyChunkOverlap, settings.Chunking.OverlapRatio},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	secrets := map[string]string{
		keyEmbedAPIKey:  settings.Embedding.APIKey,
		keyLLMAPIKey:    settings.LLM.APIKey,
		keyQdrantAPIKey: settings.Store.QdrantAPIKey,
	}
	for key, value := range secrets {
		if value == "" {
			continue
		}
		if err := s.configStore.Set(key, value); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	return nil
}

// Set updates a single setting by its dotted config key.
// The value is parsed according to the key's type before it is stored.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseSetting(kind, strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}

	if key == keyChunkOverlap && !domain.ValidOverlapRatio(parsed.(float64)) {
		return fmt.Errorf("%w: %s must be greater than 0 and less than 1", domain.ErrInvalidInput, key)
	}

	if key == keyEmbedProvider && parsed == domain.AIProviderAnthropic.String() {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, parsed)
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Unset removes a setting so its default applies again.
func (s *SettingsService) Unset(key string) error {
	if _, ok := settingKinds[key]; !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if err := s.configStore.Delete(key); err != nil {
		return fmt.Errorf("unset %s: %w", key, err)
	}
	return nil
}

// Keys returns the settable config keys in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

func parseSetting(kind valueKind, value string) (any, error) {
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("expected an integer, got %q", value)
		}
		return n, nil
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("expected a number, got %q", value)
		}
		return f, nil
	case kindDuration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("expected a duration like 40s, got %q", value)
		}
		return d.String(), nil
	case kindProvider:
		if !domain.AIProvider(value).IsValid() {
			return nil, fmt.Errorf("unknown provider %q", value)
		}
		return value, nil
	case kindBackend:
		if !domain.StoreBackend(value).IsValid() {
			return nil, fmt.Errorf("unknown store backend %q", value)
		}
		return value, nil
	default:
		return value, nil
	}
}

// Helper methods for reading config with defaults.

func (s *SettingsService) env(name string) string {
	if s.lookupEnv == nil {
		return ""
	}
	val, _ := s.lookupEnv(name)
	return val
}

// raw returns the environment override or the config value for key.
func (s *SettingsService) raw(key string) (any, bool) {
	envName := EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	if val := s.env(envName); val != "" {
		return val, true
	}
	return s.configStore.Get(key)
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val, ok := s.raw(key)
	if !ok {
		return defaultVal
	}
	str, ok := val.(string)
	if !ok || str == "" {
		return defaultVal
	}
	return str
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val, ok := s.raw(key)
	if !ok {
		return defaultVal
	}
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, ok := s.raw(key)
	if !ok {
		return defaultVal
	}
	switch v := val.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	str := s.getString(key, "")
	if str == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(str)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.getString(key, ""))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.StoreBackend) domain.StoreBackend {
	backend := domain.StoreBackend(s.getString(keyStoreBackend, ""))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
