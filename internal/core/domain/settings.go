package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API (or any OpenAI-compatible endpoint).
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// StoreBackend identifies where chunks are persisted.
type StoreBackend string

// Available store backends.
const (
	// StoreBackendSQLite keeps documents and chunks in a local SQLite file.
	StoreBackendSQLite StoreBackend = "sqlite"

	// StoreBackendMemory keeps everything in process memory.
	StoreBackendMemory StoreBackend = "memory"

	// StoreBackendQdrant keeps chunks in a Qdrant collection.
	// Documents stay in SQLite.
	StoreBackendQdrant StoreBackend = "qdrant"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreBackendSQLite, StoreBackendMemory, StoreBackendQdrant:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StoreBackend) String() string {
	return string(b)
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Concurrency is the maximum number of in-flight embedding calls during a reindex.
	Concurrency int

	// RequestsPerSecond throttles embedding calls. Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// GenerationSettings controls the answer generation call.
type GenerationSettings struct {
	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// TopK limits sampling to the K most likely tokens.
	TopK int

	// TopP is the nucleus sampling threshold.
	TopP float64

	// Timeout bounds the generation call. On expiry the keyword fallback answers.
	Timeout time.Duration
}

// StoreSettings holds chunk and document storage configuration.
type StoreSettings struct {
	// Backend selects the chunk store implementation.
	Backend StoreBackend

	// DataDir is where the SQLite database lives.
	DataDir string

	// QdrantHost is the Qdrant gRPC host.
	QdrantHost string

	// QdrantPort is the Qdrant gRPC port.
	QdrantPort int

	// QdrantAPIKey authenticates against Qdrant Cloud.
	QdrantAPIKey string

	// QdrantCollection is the collection holding chunk points.
	QdrantCollection string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Generation holds answer generation parameters.
	Generation GenerationSettings

	// Store holds storage settings.
	Store StoreSettings

	// Chunking holds the default chunker options.
	Chunking ChunkOptions
}

// DefaultAppSettings returns settings with sensible defaults.
// Both AI services default to a local Ollama instance.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider:    AIProviderOllama,
			Model:       DefaultEmbeddingModels()[AIProviderOllama],
			Concurrency: 4,
		},
		LLM: LLMSettings{
			Provider: AIProviderOllama,
			Model:    DefaultLLMModels()[AIProviderOllama],
		},
		Generation: DefaultGenerationSettings(),
		Store: StoreSettings{
			Backend:          StoreBackendSQLite,
			QdrantHost:       "localhost",
			QdrantPort:       6334,
			QdrantCollection: "lectern_chunks",
		},
		Chunking: DefaultChunkOptions(),
	}
}

// DefaultGenerationSettings returns the parameters used for grounded answers.
func DefaultGenerationSettings() GenerationSettings {
	return GenerationSettings{
		Temperature: 0,
		MaxTokens:   200,
		TopK:        30,
		TopP:        0.9,
		Timeout:     40 * time.Second,
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "mistral",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
