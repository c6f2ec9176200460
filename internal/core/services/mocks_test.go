package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Vectors come from the vectors map, then embedFunc, then a letter histogram.
type mockEmbeddingService struct {
	mu        sync.Mutex
	vectors   map[string][]float32
	embedFunc func(ctx context.Context, text string) ([]float32, error)
	calls     int
	pingErr   error
}

func (m *mockEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	vec, ok := m.vectors[text]
	m.mu.Unlock()

	if ok {
		return vec, nil
	}
	if m.embedFunc != nil {
		return m.embedFunc(ctx, text)
	}
	return letterHistogram(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		result[i] = vec
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return 26
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return m.pingErr
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

func (m *mockEmbeddingService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// letterHistogram is a deterministic 26-dimensional embedding.
func letterHistogram(text string) []float32 {
	vec := make([]float32, 26)
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z':
			vec[r-'a']++
		case r >= 'A' && r <= 'Z':
			vec[r-'A']++
		}
	}
	return vec
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	mu           sync.Mutex
	response     string
	generateErr  error
	generateFunc func(ctx context.Context, prompt string) (string, error)
	prompts      []string
	opts         []driven.GenerateOptions
	pingErr      error
}

func (m *mockLLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	m.mu.Unlock()

	if m.generateFunc != nil {
		return m.generateFunc(ctx, prompt)
	}
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.response, nil
}

func (m *mockLLMService) ModelName() string {
	return "mock-llm"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return m.pingErr
}

func (m *mockLLMService) Close() error {
	return nil
}

func (m *mockLLMService) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

// blockingGenerate waits for the context to end, like a slow model.
func blockingGenerate(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
	err     error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	p, ok := m.prompts[name]
	if !ok {
		return "", errors.New("prompt not found")
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// mockMetrics implements driven.PipelineMetrics for testing.
type mockMetrics struct {
	mu         sync.Mutex
	reindexes  []string
	chunks     []int
	embeddings int
	embedErrs  int
	asks       []string
}

func (m *mockMetrics) ObserveReindex(outcome string, chunks int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reindexes = append(m.reindexes, outcome)
	m.chunks = append(m.chunks, chunks)
}

func (m *mockMetrics) ObserveEmbedding(_ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embeddings++
	if err != nil {
		m.embedErrs++
	}
}

func (m *mockMetrics) ObserveAsk(method string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.asks = append(m.asks, method)
}

// failingChunkStore wraps a chunk store and fails selected operations.
type failingChunkStore struct {
	driven.ChunkStore
	replaceErr error
	listErr    error
	replaced   int
}

func (f *failingChunkStore) ReplaceAll(ctx context.Context, documentID string, chunks []domain.Chunk) (int, error) {
	f.replaced++
	if f.replaceErr != nil {
		return 0, f.replaceErr
	}
	return f.ChunkStore.ReplaceAll(ctx, documentID, chunks)
}

func (f *failingChunkStore) ListByDocument(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.ChunkStore.ListByDocument(ctx, documentID)
}

// mockNormaliserRegistry implements driven.NormaliserRegistry for testing.
// It treats every supported type as UTF-8 text.
type mockNormaliserRegistry struct {
	types []string
	err   error
}

func (m *mockNormaliserRegistry) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, t := range m.types {
		if t == raw.MIMEType {
			return &driven.NormaliseResult{Document: domain.Document{Content: string(raw.Content)}}, nil
		}
	}
	return nil, domain.ErrUnsupportedType
}

func (m *mockNormaliserRegistry) Register(_ driven.Normaliser) {}

func (m *mockNormaliserRegistry) SupportedMIMETypes() []string {
	return m.types
}

// mockAIValidator implements driven.AIConfigValidator for testing.
type mockAIValidator struct {
	embedErr error
	llmErr   error
}

func (m *mockAIValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error {
	return m.embedErr
}

func (m *mockAIValidator) ValidateLLM(_ *domain.LLMSettings) error {
	return m.llmErr
}
