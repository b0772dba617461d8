// Package solver finds dictionary words in a word-search grid.
//
// For each start cell and direction the engine reads a run of the minimum
// word length, then extends it one rune at a time. At every step the live
// candidate set is narrowed to the dictionary words sharing the current
// prefix; once it is empty no longer run can match and the branch ends.
// Because the candidates are sorted, the first one is the shortest word
// consistent with the prefix, so "get" is reported before "gets".
package solver

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/wordsearch/internal/dictionary"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/internal/puzzle"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/errors"
)

// DefaultMinLength is the shortest word reported unless WithMinLength says
// otherwise.
const DefaultMinLength = 4

// Stats counts the work done by one search.
type Stats struct {
	Starts   int `json:"starts"`   // (cell, direction) pairs with a full initial run
	Expanded int `json:"expanded"` // prefixes with at least one candidate
	Pruned   int `json:"pruned"`   // prefixes whose candidate set came back empty
	Found    int `json:"found"`
}

func (s *Stats) add(o Stats) {
	s.Starts += o.Starts
	s.Expanded += o.Expanded
	s.Pruned += o.Pruned
	s.Found += o.Found
}

type Option func(*Engine)

// WithMinLength sets the length of the initial run read at every start cell.
// Shorter words are never reported.
func WithMinLength(n int) Option {
	return func(e *Engine) { e.minLength = n }
}

// WithDirections restricts the scan to dirs, in the order given.
func WithDirections(dirs ...puzzle.Direction) Option {
	return func(e *Engine) { e.directions = dirs }
}

// Engine searches one complete grid against one dictionary. Both are only
// read, so an Engine may be searched from several goroutines.
type Engine struct {
	grid       *puzzle.Grid
	dict       *dictionary.Dictionary
	minLength  int
	directions []puzzle.Direction
	logger     *slog.Logger
}

// New validates the grid and options. An incomplete grid is a structural
// error: nothing is searched.
func New(grid *puzzle.Grid, dict *dictionary.Dictionary, opts ...Option) (*Engine, error) {
	e := &Engine{
		grid:       grid,
		dict:       dict,
		minLength:  DefaultMinLength,
		directions: puzzle.Directions,
		logger:     slog.Default().With("component", "solver"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if grid == nil || dict == nil {
		return nil, fmt.Errorf("%w: grid and dictionary are required", apperrors.ErrInvalidInput)
	}
	if !grid.IsComplete() {
		return nil, fmt.Errorf("%w: got %d of %d characters",
			apperrors.ErrIncompleteGrid, grid.Filled(), grid.Size()*grid.Size())
	}
	if e.minLength < 1 {
		return nil, fmt.Errorf("%w: minimum word length must be at least 1, got %d",
			apperrors.ErrInvalidInput, e.minLength)
	}
	for _, d := range e.directions {
		if !d.Valid() {
			return nil, fmt.Errorf("%w: unknown direction %d", apperrors.ErrInvalidInput, int(d))
		}
	}
	return e, nil
}

func (e *Engine) MinLength() int { return e.minLength }

// Grid returns the grid being searched.
func (e *Engine) Grid() *puzzle.Grid { return e.grid }

// Search yields every match in start-cell order, then direction order. The
// walk stops as soon as the consumer stops ranging.
func (e *Engine) Search() iter.Seq[Result] {
	seq, _ := e.SearchWithStats()
	return seq
}

// SearchWithStats is Search plus counters that fill in as the sequence is
// consumed.
func (e *Engine) SearchWithStats() (iter.Seq[Result], *Stats) {
	stats := &Stats{}
	return func(yield func(Result) bool) {
		for p := range e.grid.Points() {
			if !e.searchFrom(p, yield, stats) {
				return
			}
		}
	}, stats
}

// All collects Search into a slice.
func (e *Engine) All() []Result {
	var out []Result
	for r := range e.Search() {
		out = append(out, r)
	}
	return out
}

// SearchParallel searches rows concurrently on up to workers goroutines and
// returns results in the same order as Search.
func (e *Engine) SearchParallel(ctx context.Context, workers int) ([]Result, Stats, error) {
	if workers < 1 {
		workers = 1
	}
	size := e.grid.Size()
	rows := make([][]Result, size)
	rowStats := make([]Stats, size)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for y := 0; y < size; y++ {
		g.Go(func() error {
			collect := func(r Result) bool {
				rows[y] = append(rows[y], r)
				return true
			}
			for x := 0; x < size; x++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				e.searchFrom(puzzle.Point{X: x, Y: y}, collect, &rowStats[y])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Stats{}, fmt.Errorf("searching grid: %w", err)
	}

	var total Stats
	var out []Result
	for y := range rows {
		out = append(out, rows[y]...)
		total.add(rowStats[y])
	}
	e.logger.Debug("parallel search finished",
		"size", size,
		"workers", workers,
		"found", total.Found,
		"expanded", total.Expanded,
	)
	return out, total, nil
}

// searchFrom runs every direction from one start cell. It returns false once
// yield asks to stop.
func (e *Engine) searchFrom(start puzzle.Point, yield func(Result) bool, stats *Stats) bool {
	for _, d := range e.directions {
		prefix, ok := e.grid.ReadRun(start, d, e.minLength)
		if !ok {
			continue
		}
		stats.Starts++
		if !e.extend(prefix, start, d, e.dict.Words(), yield, stats) {
			return false
		}
	}
	return true
}

// extend grows prefix along d until the candidate set empties or the run
// leaves the grid.
func (e *Engine) extend(prefix string, start puzzle.Point, d puzzle.Direction, candidates dictionary.Candidates, yield func(Result) bool, stats *Stats) bool {
	depth := utf8.RuneCountInString(prefix)
	for {
		candidates = dictionary.PrefixRange(prefix, candidates)
		if len(candidates) == 0 {
			stats.Pruned++
			return true
		}
		stats.Expanded++
		if candidates[0] == prefix {
			stats.Found++
			if !yield(newResult(prefix, start, d)) {
				return false
			}
		}
		next, ok := e.grid.ReadAt(start, d, depth)
		if !ok {
			return true
		}
		prefix += string(next)
		depth++
	}
}
