package analytics

import (
	"cmp"
	"maps"
	"slices"
	"sync"
	"time"
)

const (
	// maxLatencySamples bounds the latency window used for percentiles.
	maxLatencySamples = 10000
	maxSeenRequests   = 100000
)

// AggregatedStats is the recorder's view of all solve events seen so far.
type AggregatedStats struct {
	TotalSolves     int64             `json:"total_solves"`
	Outcomes        map[Outcome]int64 `json:"outcomes"`
	CacheHits       int64             `json:"cache_hits"`
	CacheMisses     int64             `json:"cache_misses"`
	WordsFound      int64             `json:"words_found"`
	AvgGridSize     float64           `json:"avg_grid_size"`
	AvgLatencyMs    float64           `json:"avg_latency_ms"`
	P50LatencyMs    int64             `json:"p50_latency_ms"`
	P95LatencyMs    int64             `json:"p95_latency_ms"`
	P99LatencyMs    int64             `json:"p99_latency_ms"`
	TopWords        []WordCount       `json:"top_words"`
	SolvesPerMinute float64           `json:"solves_per_minute"`
	CapturedAt      time.Time         `json:"captured_at"`
}

// WordCount is a word and how many solves reported it.
type WordCount struct {
	Word  string `json:"word"`
	Count int64  `json:"count"`
}

// Aggregator folds SolveEvents into running totals. It is safe for
// concurrent use.
type Aggregator struct {
	mu         sync.RWMutex
	total      int64
	outcomes   map[Outcome]int64
	cacheHits  int64
	words      int64
	gridCells  int64
	latencies  []int64
	next       int
	wordCounts map[string]int64
	seen       map[string]struct{}
	startTime  time.Time
	now        func() time.Time
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		outcomes:   make(map[Outcome]int64),
		latencies:  make([]int64, 0, 1024),
		wordCounts: make(map[string]int64),
		seen:       make(map[string]struct{}),
		startTime:  time.Now(),
		now:        time.Now,
	}
}

// Record adds one event. Events carrying a request id already recorded are
// ignored, so Kafka redelivery does not double count. It reports whether the
// event was new.
func (a *Aggregator) Record(e SolveEvent) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if e.RequestID != "" {
		if _, dup := a.seen[e.RequestID]; dup {
			return false
		}
		if len(a.seen) >= maxSeenRequests {
			clear(a.seen)
		}
		a.seen[e.RequestID] = struct{}{}
	}
	a.total++
	a.outcomes[e.Outcome]++
	if e.CacheHit {
		a.cacheHits++
	}
	a.words += int64(e.WordsFound)
	a.gridCells += int64(e.GridSize)
	if len(a.latencies) < maxLatencySamples {
		a.latencies = append(a.latencies, e.LatencyMs)
	} else {
		a.latencies[a.next] = e.LatencyMs
		a.next = (a.next + 1) % maxLatencySamples
	}
	for _, w := range e.Words {
		a.wordCounts[w]++
	}
	return true
}

// Stats returns a snapshot of the totals.
func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	now := a.now()
	stats := AggregatedStats{
		TotalSolves: a.total,
		Outcomes:    maps.Clone(a.outcomes),
		CacheHits:   a.cacheHits,
		CacheMisses: a.total - a.cacheHits,
		WordsFound:  a.words,
		TopWords:    topWords(a.wordCounts, 10),
		CapturedAt:  now.UTC(),
	}
	if a.total > 0 {
		stats.AvgGridSize = float64(a.gridCells) / float64(a.total)
	}
	if len(a.latencies) > 0 {
		sorted := slices.Clone(a.latencies)
		slices.Sort(sorted)
		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	if minutes := now.Sub(a.startTime).Minutes(); minutes > 0 {
		stats.SolvesPerMinute = float64(a.total) / minutes
	}
	return stats
}

func percentile(sorted []int64, pct int) int64 {
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func topWords(counts map[string]int64, n int) []WordCount {
	result := make([]WordCount, 0, len(counts))
	for w, c := range counts {
		result = append(result, WordCount{Word: w, Count: c})
	}
	slices.SortFunc(result, func(a, b WordCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Word, b.Word)
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
