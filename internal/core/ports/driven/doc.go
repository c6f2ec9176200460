// Package driven declares the infrastructure the core calls out to.
//
// Storage (DocumentStore, ChunkStore), configuration (ConfigStore),
// embedding (EmbeddingService), chunking (PostProcessorFactory) and text
// extraction (NormaliserRegistry) must be wired for the application to run.
//
// The rest may be nil. Without an LLMService every answer takes the keyword
// fallback; without a PromptStore the built-in guardrail is used; without an
// AIConfigValidator provider settings are saved unchecked.
//
// Adapters import this package and domain. This package imports no adapter.
package driven
