package solver

import (
	"context"
	"fmt"
	"time"
)

// Solution is a finished search, in the shape the API returns and the cache
// stores.
type Solution struct {
	Size      int           `json:"size"`
	MinLength int           `json:"min_length"`
	Results   []Result      `json:"results"`
	Stats     Stats         `json:"stats"`
	Elapsed   time.Duration `json:"elapsed_ns"`
}

// Solve runs the whole search. With more than one worker rows are searched
// concurrently; the result order is the same either way. ctx is checked
// before every start cell.
func (e *Engine) Solve(ctx context.Context, workers int) (*Solution, error) {
	start := time.Now()
	sol := &Solution{
		Size:      e.grid.Size(),
		MinLength: e.minLength,
	}
	if workers > 1 {
		results, stats, err := e.SearchParallel(ctx, workers)
		if err != nil {
			return nil, err
		}
		sol.Results, sol.Stats = results, stats
	} else {
		collect := func(r Result) bool {
			sol.Results = append(sol.Results, r)
			return true
		}
		for p := range e.grid.Points() {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("searching grid: %w", err)
			}
			e.searchFrom(p, collect, &sol.Stats)
		}
	}
	if sol.Results == nil {
		sol.Results = []Result{}
	}
	sol.Elapsed = time.Since(start)
	return sol, nil
}
