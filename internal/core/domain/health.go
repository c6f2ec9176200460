package domain

import "time"

// HealthCheck is the result of probing one external collaborator.
type HealthCheck struct {
	// Name identifies the component (e.g., "embedding", "llm", "store").
	Name string

	// Target describes what was probed (provider, model or path).
	Target string

	// OK is true when the probe succeeded.
	OK bool

	// Detail carries the error message or a short status.
	Detail string

	// Hint tells the operator how to fix a failed probe.
	Hint string

	// Latency is how long the probe took.
	Latency time.Duration
}
