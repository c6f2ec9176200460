package driving

import (
	"context"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// AskService answers questions against a single indexed document.
type AskService interface {
	// Ask retrieves the top-ranked chunks for the question and asks the
	// generator for a grounded answer. When generation times out the answer
	// comes from a keyword search over the document text instead.
	Ask(ctx context.Context, req domain.AskRequest) (*domain.Answer, error)

	// WarmUp sends a tiny generation request so the model is loaded
	// before the first real question.
	WarmUp(ctx context.Context) error
}
