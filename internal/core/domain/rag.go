package domain

// Chunking defaults.
const (
	// DefaultMaxChars is the hard upper bound on a chunk's length.
	DefaultMaxChars = 1200

	// DefaultMinChars is the soft lower bound below which the chunker keeps accumulating.
	DefaultMinChars = 400

	// DefaultOverlapRatio is the fraction of MaxChars carried into the next chunk.
	DefaultOverlapRatio = 0.1
)

// Retrieval bounds.
const (
	// DefaultTopK is the number of chunks used when a request does not specify one.
	DefaultTopK = 4

	// MinTopK is the smallest number of chunks retrieval returns.
	MinTopK = 1

	// MaxTopK is the largest number of chunks retrieval returns.
	MaxTopK = 8
)

// ChunkOptions configures how document text is split into chunks.
// Zero values mean "use the default".
type ChunkOptions struct {
	// MaxChars is the hard upper bound on chunk length in characters.
	MaxChars int

	// MinChars is the soft lower bound in characters.
	MinChars int

	// OverlapRatio is the fraction of MaxChars taken from the start of the
	// next paragraph when a boundary is forced.
	OverlapRatio float64
}

// DefaultChunkOptions returns the default chunking configuration.
func DefaultChunkOptions() ChunkOptions {
	return ChunkOptions{
		MaxChars:     DefaultMaxChars,
		MinChars:     DefaultMinChars,
		OverlapRatio: DefaultOverlapRatio,
	}
}

// WithDefaults returns a copy where unset or out-of-range values are replaced by defaults.
func (o ChunkOptions) WithDefaults() ChunkOptions {
	if o.MaxChars <= 0 {
		o.MaxChars = DefaultMaxChars
	}
	if o.MinChars <= 0 {
		o.MinChars = DefaultMinChars
	}
	if !ValidOverlapRatio(o.OverlapRatio) {
		o.OverlapRatio = DefaultOverlapRatio
	}
	return o
}

// ValidOverlapRatio reports whether r lies strictly between 0 and 1.
// Zero is reserved for "use the default" and cannot disable overlap.
func ValidOverlapRatio(r float64) bool {
	return r > 0 && r < 1
}

// OverlapChars returns floor(MaxChars * OverlapRatio).
func (o ChunkOptions) OverlapChars() int {
	return int(float64(o.MaxChars) * o.OverlapRatio)
}

// Chunker option bag keys, shared by config files and reindex requests.
const (
	ChunkerName          = "chunker"
	ChunkKeyMaxChars     = "max_chars"
	ChunkKeyMinChars     = "min_chars"
	ChunkKeyOverlapRatio = "overlap_ratio"
)

// Config converts the options into a generic option bag.
// Zero fields are omitted so the receiver keeps its defaults.
func (o ChunkOptions) Config() map[string]any {
	cfg := make(map[string]any)
	if o.MaxChars > 0 {
		cfg[ChunkKeyMaxChars] = o.MaxChars
	}
	if o.MinChars > 0 {
		cfg[ChunkKeyMinChars] = o.MinChars
	}
	if o.OverlapRatio > 0 {
		cfg[ChunkKeyOverlapRatio] = o.OverlapRatio
	}
	return cfg
}

// Merge returns o with zero fields taken from base.
func (o ChunkOptions) Merge(base ChunkOptions) ChunkOptions {
	if o.MaxChars <= 0 {
		o.MaxChars = base.MaxChars
	}
	if o.MinChars <= 0 {
		o.MinChars = base.MinChars
	}
	if o.OverlapRatio <= 0 {
		o.OverlapRatio = base.OverlapRatio
	}
	return o
}

// Segment is a chunk of text before it is attached to a document.
type Segment struct {
	// Text is the trimmed, non-empty chunk text.
	Text string

	// TokensApprox is the rough token estimate for Text.
	TokensApprox int
}

// ScoredChunk is a retrieval candidate: a chunk plus its similarity to a query.
// It is produced per query and never persisted.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// Citation references a chunk used to ground an answer.
type Citation struct {
	// ID is the 1-based citation marker used in the prompt ([#ID]).
	ID int `json:"id"`

	// ChunkIndex is the chunk's index within its document.
	ChunkIndex int `json:"chunkIndex"`

	// Score is the cosine similarity of the chunk to the question.
	Score float64 `json:"score"`
}

// AnswerMethod identifies how an answer was produced.
type AnswerMethod string

// Available answer methods.
const (
	// AnswerMethodRAG means the answer was generated from retrieved chunks.
	AnswerMethodRAG AnswerMethod = "rag"

	// AnswerMethodKeywordFallback means generation timed out and a keyword
	// search over the document text was used instead.
	AnswerMethodKeywordFallback AnswerMethod = "keyword-fallback"
)

// String returns the string representation.
func (m AnswerMethod) String() string {
	return string(m)
}

// AskRequest is a question against a single document.
type AskRequest struct {
	// DocumentID scopes retrieval to one document.
	DocumentID string

	// Question is the user's question.
	Question string

	// TopK is the requested number of chunks; clamped to [MinTopK, MaxTopK].
	// Zero means DefaultTopK.
	TopK int
}

// Answer is the result of an AskRequest.
type Answer struct {
	// Answer is the generated (or fallback) answer text, trimmed.
	Answer string `json:"answer"`

	// Citations lists the chunks the prompt was grounded on.
	Citations []Citation `json:"citations"`

	// TopK is the number of chunks actually used.
	TopK int `json:"topK"`

	// Model is the generation model name.
	Model string `json:"model,omitempty"`

	// Method distinguishes RAG answers from keyword fallback answers.
	Method AnswerMethod `json:"method"`

	// Note explains a degraded answer.
	Note string `json:"note,omitempty"`
}

// ClampTopK bounds k to [MinTopK, MaxTopK].
func ClampTopK(k int) int {
	if k < MinTopK {
		return MinTopK
	}
	if k > MaxTopK {
		return MaxTopK
	}
	return k
}

// NotFoundAnswer is the exact reply the guardrail asks for when the context
// does not contain the answer.
const NotFoundAnswer = "I cannot find the answer in the provided document."

// DefaultAskGuardrail is the instruction prepended to every grounded prompt.
const DefaultAskGuardrail = "You are a helpful teaching assistant. Use ONLY the provided chunks to answer. " +
	"If the answer is not present, reply exactly: \"" + NotFoundAnswer + "\" " +
	"After the answer, list the citations as [#id]."
