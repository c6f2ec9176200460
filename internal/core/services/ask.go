package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
	"github.com/custodia-labs/lectern/internal/core/ports/driving"
	"github.com/custodia-labs/lectern/internal/logger"
)

// Ensure AskService implements the interfaces.
var (
	_ driving.AskService      = (*AskService)(nil)
	_ driven.PromptStoreAware = (*AskService)(nil)
)

// Notes explaining a keyword fallback answer to the caller.
const (
	noteTimeout = "AI generation timed out; answered with keyword search over the document"
	noteNoLLM   = "No language model is configured; answered with keyword search over the document"
)

// warmUpPrompt is the tiny request used to load the model.
const warmUpPrompt = "Hello"

// AskService answers questions against one document at a time.
type AskService struct {
	docStore    driven.DocumentStore
	retriever   *Retriever
	embedder    *BatchEmbedder
	llmService  driven.LLMService
	promptStore driven.PromptStore
	generation  domain.GenerationSettings
	metrics     driven.PipelineMetrics
}

// NewAskService creates a new ask service.
// The llmService parameter is optional (can be nil); without it every
// answer comes from the keyword fallback.
func NewAskService(
	docStore driven.DocumentStore,
	chunkStore driven.ChunkStore,
	embedder *BatchEmbedder,
	llmService driven.LLMService,
) *AskService {
	return &AskService{
		docStore:   docStore,
		retriever:  NewRetriever(chunkStore),
		embedder:   embedder,
		llmService: llmService,
		generation: domain.DefaultGenerationSettings(),
	}
}

// SetPromptStore sets the prompt store for the guardrail template.
func (s *AskService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// SetGeneration sets the generation parameters and timeout.
func (s *AskService) SetGeneration(g domain.GenerationSettings) {
	if g.Timeout <= 0 {
		g.Timeout = domain.DefaultGenerationSettings().Timeout
	}
	s.generation = g
}

// SetMetrics sets the recorder for answered questions.
func (s *AskService) SetMetrics(m driven.PipelineMetrics) {
	s.metrics = m
}

// Ask answers a question from the top-ranked chunks of one document.
func (s *AskService) Ask(ctx context.Context, req domain.AskRequest) (*domain.Answer, error) {
	logger.Section("Ask")

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(req.DocumentID) == "" {
		return nil, fmt.Errorf("%w: document id is empty", domain.ErrInvalidInput)
	}

	topK := req.TopK
	if topK == 0 {
		topK = domain.DefaultTopK
	}
	topK = domain.ClampTopK(topK)
	logger.Debug("Document: %s, topK: %d, question: %q", req.DocumentID, topK, question)

	start := time.Now()

	doc, err := s.docStore.GetDocument(ctx, req.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}

	queryVec, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	ranked, err := s.retriever.Retrieve(ctx, queryVec, doc.ID, topK)
	if err != nil {
		return nil, err
	}

	prompt, citations := NewAssembler(s.guardrail()).Assemble(question, ranked)
	logger.Debug("Prompt: %d chars, %d citations", len(prompt), len(citations))

	if s.llmService == nil {
		logger.Warn("No LLM configured, using keyword fallback")
		return s.fallback(doc, question, len(ranked), start, noteNoLLM), nil
	}

	text, err := s.generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, domain.ErrGenerationTimeout) && ctx.Err() == nil {
			logger.Warn("Generation timed out after %s, using keyword fallback", s.generation.Timeout)
			return s.fallback(doc, question, len(ranked), start, noteTimeout), nil
		}
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	answer := &domain.Answer{
		Answer:    strings.TrimSpace(text),
		Citations: citations,
		TopK:      len(ranked),
		Model:     s.llmService.ModelName(),
		Method:    domain.AnswerMethodRAG,
	}
	s.observe(answer.Method, start)

	logger.L().Info("answered",
		zap.String("document_id", doc.ID),
		zap.String("model", answer.Model),
		zap.Int("citations", len(citations)),
		zap.Duration("took", time.Since(start).Round(time.Millisecond)))
	return answer, nil
}

// WarmUp sends a tiny generation request so the model is loaded.
func (s *AskService) WarmUp(ctx context.Context) error {
	if s.llmService == nil {
		return domain.ErrLLMUnavailable
	}

	logger.Debug("Warming up %s", s.llmService.ModelName())
	_, err := s.llmService.Generate(ctx, warmUpPrompt, driven.GenerateOptions{MaxTokens: 5})
	if err != nil {
		return fmt.Errorf("warm up: %w", err)
	}
	return nil
}

// generate calls the LLM under the configured timeout. The deferred cancel
// releases the request as soon as Ask returns.
func (s *AskService) generate(ctx context.Context, prompt string) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, s.generation.Timeout)
	defer cancel()

	text, err := s.llmService.Generate(genCtx, prompt, driven.GenerateOptions{
		MaxTokens:   s.generation.MaxTokens,
		Temperature: s.generation.Temperature,
		TopK:        s.generation.TopK,
		TopP:        s.generation.TopP,
	})
	if err != nil && errors.Is(genCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, domain.ErrGenerationTimeout) {
		err = fmt.Errorf("%w: %w", domain.ErrGenerationTimeout, err)
	}
	return text, err
}

func (s *AskService) fallback(doc *domain.Document, question string, used int, start time.Time, note string) *domain.Answer {
	answer := &domain.Answer{
		Answer:    KeywordFallback(doc.Content, question),
		Citations: []domain.Citation{},
		TopK:      used,
		Method:    domain.AnswerMethodKeywordFallback,
		Note:      note,
	}
	s.observe(answer.Method, start)
	return answer
}

func (s *AskService) guardrail() string {
	if s.promptStore == nil {
		return domain.DefaultAskGuardrail
	}
	prompt, err := s.promptStore.Load(driven.PromptAskGuardrail)
	if err != nil || strings.TrimSpace(prompt) == "" {
		logger.Debug("Using built-in guardrail: %v", err)
		return domain.DefaultAskGuardrail
	}
	return prompt
}

func (s *AskService) observe(method domain.AnswerMethod, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveAsk(method.String(), time.Since(start))
	}
}
