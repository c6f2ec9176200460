package driven

import "context"

// EmbeddingService turns text into vectors. Vectors from different models
// are not comparable, so a document must be re-indexed after the embedding
// model changes.
type EmbeddingService interface {
	// Embed fails with domain.ErrEmbeddingService when the provider returns
	// no usable vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	Dimensions() int
	ModelName() string

	// Ping checks the provider is reachable and the model exists, without
	// embedding anything.
	Ping(ctx context.Context) error

	Close() error
}
