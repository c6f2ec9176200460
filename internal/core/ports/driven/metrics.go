package driven

import "time"

// PipelineMetrics records pipeline activity.
// Services treat a nil PipelineMetrics as "metrics disabled".
type PipelineMetrics interface {
	// ObserveReindex records a finished reindex with its outcome
	// ("ok" or "error") and the number of chunks written.
	ObserveReindex(outcome string, chunks int, elapsed time.Duration)

	// ObserveEmbedding records one embedding call.
	ObserveEmbedding(elapsed time.Duration, err error)

	// ObserveAsk records an answered question by method ("rag" or "keyword-fallback").
	ObserveAsk(method string, elapsed time.Duration)
}
