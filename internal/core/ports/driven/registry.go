package driven

import (
	"context"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// NormaliserRegistry dispatches a raw document to the highest-priority
// normaliser registered for its MIME type.
type NormaliserRegistry interface {
	// Normalise returns domain.ErrUnsupportedType when nothing handles the type.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)

	// Register adds a normaliser. Later registrations with equal priority
	// do not displace earlier ones.
	Register(normaliser Normaliser)

	// SupportedMIMETypes lists every type some normaliser accepts.
	SupportedMIMETypes() []string
}
