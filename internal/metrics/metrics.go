// Package metrics holds lightweight operation counters for the status
// endpoint. Counters are injected into the components that bump them; there
// is no global state.
package metrics

import "sync/atomic"

// Counters tracks totals since process start.
type Counters struct {
	DocumentsIngested atomic.Int64
	QueriesAnswered   atomic.Int64
	AuditsRun         atomic.Int64
	ExtractionsRun    atomic.Int64
	LLMFallbacks      atomic.Int64
}

// Snapshot is a point-in-time copy of all counters, shaped for JSON output.
type Snapshot struct {
	DocumentsIngested int64 `json:"documents_ingested"`
	QueriesAnswered   int64 `json:"queries_answered"`
	AuditsRun         int64 `json:"audits_run"`
	ExtractionsRun    int64 `json:"extractions_run"`
	LLMFallbacks      int64 `json:"llm_fallbacks"`
}

// Snapshot returns the current counter values.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		DocumentsIngested: c.DocumentsIngested.Load(),
		QueriesAnswered:   c.QueriesAnswered.Load(),
		AuditsRun:         c.AuditsRun.Load(),
		ExtractionsRun:    c.ExtractionsRun.Load(),
		LLMFallbacks:      c.LLMFallbacks.Load(),
	}
}
