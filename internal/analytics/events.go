// Package analytics carries solve events from the API server to the
// recorder: a batching Kafka collector on the producing side, an in-memory
// aggregator and HTTP stats endpoint on the consuming side.
package analytics

import "time"

// Outcome classifies a solve request.
type Outcome string

const (
	OutcomeFound    Outcome = "found"
	OutcomeEmpty    Outcome = "empty"
	OutcomeRejected Outcome = "rejected"
	OutcomeError    Outcome = "error"
)

// SolveEvent describes one solve request handled by the API server.
type SolveEvent struct {
	RequestID   string    `json:"request_id"`
	Outcome     Outcome   `json:"outcome"`
	GridSize    int       `json:"grid_size"`
	MinLength   int       `json:"min_length"`
	Fingerprint string    `json:"dictionary_fingerprint"`
	WordsFound  int       `json:"words_found"`
	Expanded    int       `json:"expanded"`
	Pruned      int       `json:"pruned"`
	Words       []string  `json:"words,omitempty"`
	CacheHit    bool      `json:"cache_hit"`
	LatencyMs   int64     `json:"latency_ms"`
	Error       string    `json:"error,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
