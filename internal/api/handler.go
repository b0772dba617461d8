// Package api serves the word-search HTTP API: solving puzzles against the
// loaded dictionary or an ad-hoc word list, dictionary lookups, and solve
// cache administration.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Adithya-Monish-Kumar-K/wordsearch/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/internal/cache"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/internal/dictionary"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/internal/loader"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/internal/puzzle"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/internal/solver"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/resilience"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/tracing"
)

const (
	maxBodyBytes       = 4 << 20
	defaultPrefixLimit = 50
	maxPrefixLimit     = 1000
	maxWordsInEvent    = 50
)

// Tracker receives one event per solve request. *analytics.Collector
// implements it.
type Tracker interface {
	Track(event analytics.SolveEvent)
}

// Options bounds and tunes solve requests.
type Options struct {
	MinLength    int
	Workers      int
	MaxGridSize  int
	MaxWords     int
	SolveTimeout time.Duration
}

// SolveRequest is the body of POST /api/v1/solve. Either Rows, or Size and
// Letters, describe the grid.
type SolveRequest struct {
	Size      int      `json:"size,omitempty"`
	Letters   string   `json:"letters,omitempty"`
	Rows      []string `json:"rows,omitempty"`
	Words     []string `json:"words,omitempty"`
	MinLength *int     `json:"min_length,omitempty"`
}

// SolveResponse is the body returned for a successful solve.
type SolveResponse struct {
	Count     int             `json:"count"`
	Results   []solver.Result `json:"results"`
	Size      int             `json:"size"`
	MinLength int             `json:"min_length"`
	Stats     solver.Stats    `json:"stats"`
	CacheHit  bool            `json:"cache_hit"`
	LatencyMs int64           `json:"latency_ms"`
}

type Handler struct {
	dict    *dictionary.Dictionary
	cache   *cache.SolveCache
	tracker Tracker
	metrics *metrics.Metrics
	opts    Options
	logger  *slog.Logger
}

// New creates a Handler. solveCache, tracker and m may be nil.
func New(dict *dictionary.Dictionary, solveCache *cache.SolveCache, tracker Tracker, m *metrics.Metrics, opts Options) *Handler {
	if solveCache == nil {
		solveCache = cache.New(nil, 0, nil)
	}
	if opts.MinLength < 1 {
		opts.MinLength = solver.DefaultMinLength
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if m != nil {
		m.DictionaryWords.Set(float64(dict.Len()))
	}
	return &Handler{
		dict:    dict,
		cache:   solveCache,
		tracker: tracker,
		metrics: m,
		opts:    opts,
		logger:  slog.Default().With("component", "api-handler"),
	}
}

// Solve handles POST /api/v1/solve.
func (h *Handler) Solve(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, span := tracing.Start(r.Context(), "solve", chimw.GetReqID(r.Context()))
	log := logger.FromContext(ctx)
	defer func() {
		span.End()
		span.Log(ctx, log)
	}()

	var req SolveRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, r, start, nil, fmt.Errorf("%w: decoding request body: %v", apperrors.ErrInvalidInput, err))
		return
	}

	_, prepSpan := tracing.Start(ctx, "prepare", "")
	engine, dict, err := h.prepare(req)
	prepSpan.End()
	if err != nil {
		span.SetAttr("error", err.Error())
		h.fail(w, r, start, nil, err)
		return
	}
	span.SetAttr("size", engine.Grid().Size())
	span.SetAttr("min_length", engine.MinLength())

	key := cache.Key{Rows: engine.Grid().Rows(), Fingerprint: dict.Fingerprint(), MinLength: engine.MinLength()}
	cacheCtx, cacheSpan := tracing.Start(ctx, "cache", "")
	sol, hit, err := h.cache.GetOrCompute(cacheCtx, key, func(ctx context.Context) (*solver.Solution, error) {
		ctx, searchSpan := tracing.Start(ctx, "search", "")
		defer searchSpan.End()
		searchSpan.SetAttr("workers", h.opts.Workers)
		sol, err := resilience.WithTimeout(ctx, h.opts.SolveTimeout, "solve", func(ctx context.Context) (*solver.Solution, error) {
			return engine.Solve(ctx, h.opts.Workers)
		})
		if err != nil {
			return nil, err
		}
		searchSpan.SetAttr("expanded", sol.Stats.Expanded)
		return sol, nil
	})
	cacheSpan.SetAttr("hit", hit)
	cacheSpan.End()
	if err != nil {
		span.SetAttr("error", err.Error())
		h.fail(w, r, start, engine, err)
		return
	}
	span.SetAttr("words_found", len(sol.Results))

	latency := time.Since(start)
	log.Info("puzzle solved",
		"size", sol.Size,
		"min_length", sol.MinLength,
		"words_found", len(sol.Results),
		"cache_hit", hit,
		"latency_ms", latency.Milliseconds(),
	)
	h.observe(sol, hit, latency)
	h.track(r, start, engine, dict, sol, hit)

	h.writeJSON(w, http.StatusOK, SolveResponse{
		Count:     len(sol.Results),
		Results:   sol.Results,
		Size:      sol.Size,
		MinLength: sol.MinLength,
		Stats:     sol.Stats,
		CacheHit:  hit,
		LatencyMs: latency.Milliseconds(),
	})
}

// prepare validates the request and builds the engine and the dictionary it
// searches.
func (h *Handler) prepare(req SolveRequest) (*solver.Engine, *dictionary.Dictionary, error) {
	limits := loader.Limits{MaxGridSize: h.opts.MaxGridSize, MaxWords: h.opts.MaxWords}

	var (
		grid *puzzle.Grid
		err  error
	)
	switch {
	case len(req.Rows) > 0 && (req.Size != 0 || req.Letters != ""):
		return nil, nil, fmt.Errorf("%w: give either rows or size and letters, not both", apperrors.ErrInvalidInput)
	case len(req.Rows) > 0:
		grid, err = loader.ParseRows(req.Rows, limits)
	case req.Size != 0 || req.Letters != "":
		grid, err = loader.ParseLetters(req.Size, req.Letters, limits)
	default:
		return nil, nil, fmt.Errorf("%w: request has no grid", apperrors.ErrInvalidInput)
	}
	if err != nil {
		return nil, nil, err
	}

	dict := h.dict
	if len(req.Words) > 0 {
		if limits.MaxWords > 0 && len(req.Words) > limits.MaxWords {
			return nil, nil, fmt.Errorf("%w: %d words exceeds limit %d", apperrors.ErrInvalidInput, len(req.Words), limits.MaxWords)
		}
		dict = dictionary.New(req.Words)
	}

	minLength := h.opts.MinLength
	if req.MinLength != nil {
		minLength = *req.MinLength
	}
	engine, err := solver.New(grid, dict, solver.WithMinLength(minLength))
	if err != nil {
		return nil, nil, err
	}
	return engine, dict, nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, start time.Time, engine *solver.Engine, err error) {
	status := apperrors.HTTPStatusCode(err)
	outcome := analytics.OutcomeRejected
	message := err.Error()
	if status >= http.StatusInternalServerError {
		outcome = analytics.OutcomeError
		if !errors.Is(err, apperrors.ErrTimeout) && !errors.Is(err, context.DeadlineExceeded) {
			message = "internal server error"
		}
		logger.FromContext(r.Context()).Error("solve failed", "error", err)
	} else {
		logger.FromContext(r.Context()).Info("solve rejected", "status", status, "error", err)
	}
	if h.metrics != nil {
		h.metrics.SolvesTotal.WithLabelValues(string(outcome)).Inc()
	}
	if h.tracker != nil {
		event := analytics.SolveEvent{
			RequestID: chimw.GetReqID(r.Context()),
			Outcome:   outcome,
			LatencyMs: time.Since(start).Milliseconds(),
			Error:     err.Error(),
			Timestamp: time.Now().UTC(),
		}
		if engine != nil {
			event.GridSize = engine.Grid().Size()
			event.MinLength = engine.MinLength()
		}
		h.tracker.Track(event)
	}
	h.writeError(w, status, message)
}

func (h *Handler) observe(sol *solver.Solution, hit bool, latency time.Duration) {
	if h.metrics == nil {
		return
	}
	outcome := analytics.OutcomeFound
	if len(sol.Results) == 0 {
		outcome = analytics.OutcomeEmpty
	}
	cacheStatus := "miss"
	if hit {
		cacheStatus = "hit"
		h.metrics.CacheHitsTotal.Inc()
	} else if h.cache.Enabled() {
		h.metrics.CacheMissesTotal.Inc()
	}
	h.metrics.SolvesTotal.WithLabelValues(string(outcome)).Inc()
	h.metrics.SolveLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
	h.metrics.WordsFound.Observe(float64(len(sol.Results)))
	h.metrics.PrefixesExpanded.Observe(float64(sol.Stats.Expanded))
	h.metrics.GridSize.Observe(float64(sol.Size))
}

func (h *Handler) track(r *http.Request, start time.Time, engine *solver.Engine, dict *dictionary.Dictionary, sol *solver.Solution, hit bool) {
	if h.tracker == nil {
		return
	}
	outcome := analytics.OutcomeFound
	if len(sol.Results) == 0 {
		outcome = analytics.OutcomeEmpty
	}
	words := make([]string, 0, min(len(sol.Results), maxWordsInEvent))
	for _, res := range sol.Results[:min(len(sol.Results), maxWordsInEvent)] {
		words = append(words, res.Word)
	}
	h.tracker.Track(analytics.SolveEvent{
		RequestID:   chimw.GetReqID(r.Context()),
		Outcome:     outcome,
		GridSize:    engine.Grid().Size(),
		MinLength:   engine.MinLength(),
		Fingerprint: dict.Fingerprint(),
		WordsFound:  len(sol.Results),
		Expanded:    sol.Stats.Expanded,
		Pruned:      sol.Stats.Pruned,
		Words:       words,
		CacheHit:    hit,
		LatencyMs:   time.Since(start).Milliseconds(),
		Timestamp:   time.Now().UTC(),
	})
}

// Prefix handles GET /api/v1/dictionary/prefix?p=&limit=.
func (h *Handler) Prefix(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("p")
	if prefix == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'p' is required")
		return
	}
	limit := defaultPrefixLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxPrefixLimit)
	}
	matches := h.dict.WithPrefix(prefix)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"prefix": prefix,
		"count":  len(matches),
		"words":  matches[:min(limit, len(matches))],
	})
}

// DictionaryStats handles GET /api/v1/dictionary/stats.
func (h *Handler) DictionaryStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"words":       h.dict.Len(),
		"min_length":  h.dict.MinLen(),
		"max_length":  h.dict.MaxLen(),
		"fingerprint": h.dict.Fingerprint(),
	})
}

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if !h.cache.Enabled() {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "enabled",
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

// CacheInvalidate handles POST /api/v1/cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if !h.cache.Enabled() {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
