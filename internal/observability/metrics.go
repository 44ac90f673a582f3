package observability

import (
	"sync"
)

// Metrics counts moderation activity in process. Counters are monotonic for
// the lifetime of the server; there is no external metrics backend.
type Metrics struct {
	mu sync.Mutex

	submissionsByOutcome map[string]int64
	suggestions          int64
	inferenceFailures    int64
}

// NewMetrics creates an empty metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{submissionsByOutcome: make(map[string]int64)}
}

// RecordSubmission counts one finalized submission by its outcome tag.
func (m *Metrics) RecordSubmission(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissionsByOutcome[outcome]++
}

// RecordSuggestion counts one non-persisting preview request.
func (m *Metrics) RecordSuggestion() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suggestions++
}

// RecordInferenceFailure counts one failed model call surfaced to a caller.
func (m *Metrics) RecordInferenceFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inferenceFailures++
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	SubmissionsByOutcome map[string]int64 `json:"submissions_by_outcome"`
	Suggestions          int64            `json:"suggestions"`
	InferenceFailures    int64            `json:"inference_failures"`
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	outcomes := make(map[string]int64, len(m.submissionsByOutcome))
	for k, v := range m.submissionsByOutcome {
		outcomes[k] = v
	}
	return Snapshot{
		SubmissionsByOutcome: outcomes,
		Suggestions:          m.suggestions,
		InferenceFailures:    m.inferenceFailures,
	}
}
