package driving

import (
	"context"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// HealthService probes the external collaborators the pipeline depends on.
type HealthService interface {
	// Check probes every configured collaborator and reports each result.
	Check(ctx context.Context) []domain.HealthCheck
}
