// Package transport maps network failures from provider adapters onto the
// domain error taxonomy.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// IsTimeout reports whether err is a context deadline or a network timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsConnectionRefused reports whether nothing is listening at the target.
func IsConnectionRefused(err error) bool {
	return err != nil && errors.Is(err, syscall.ECONNREFUSED)
}

// ClassifyGeneration wraps err with domain.ErrGenerationTimeout or
// domain.ErrGenerationUnavailable when it matches. Other errors are returned
// unchanged, as is an error that already carries either sentinel.
func ClassifyGeneration(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrGenerationTimeout), errors.Is(err, domain.ErrGenerationUnavailable):
		return err
	case IsTimeout(err):
		return fmt.Errorf("%w: %w", domain.ErrGenerationTimeout, err)
	case IsConnectionRefused(err):
		return fmt.Errorf("%w: %w", domain.ErrGenerationUnavailable, err)
	default:
		return err
	}
}

// ClassifyEmbedding wraps err with domain.ErrEmbeddingService, adding
// domain.ErrGenerationUnavailable when the server is not running so callers
// can print the same start-the-service hint.
func ClassifyEmbedding(err error) error {
	switch {
	case err == nil:
		return nil
	case IsConnectionRefused(err):
		return fmt.Errorf("%w: %w: %w", domain.ErrEmbeddingService, domain.ErrGenerationUnavailable, err)
	case errors.Is(err, domain.ErrEmbeddingService):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingService, err)
	}
}
