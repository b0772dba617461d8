package solver

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/wordsearch/internal/dictionary"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/internal/puzzle"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/errors"
)

func newEngine(t testing.TB, size int, letters string, words []string, opts ...Option) *Engine {
	t.Helper()
	g, err := puzzle.BuildGrid(size, []rune(letters))
	if err != nil {
		t.Fatalf("BuildGrid: %v", err)
	}
	e, err := New(g, dictionary.New(words), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func render(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.String()
	}
	return out
}

func TestSingleHorizontalWord(t *testing.T) {
	e := newEngine(t, 3, "catqqqzzz", []string{"cat"}, WithMinLength(3))
	got := render(e.All())
	want := []string{"cat (1, 1, e)"}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestShorterWordReportedFirst(t *testing.T) {
	e := newEngine(t, 4, "getsxxxxxxxxxxxx", []string{"gets", "get"}, WithMinLength(3))
	got := render(e.All())
	want := []string{"get (1, 1, e)", "gets (1, 1, e)"}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNoMatches(t *testing.T) {
	e := newEngine(t, 3, "abcdefghi", []string{"xyz"}, WithMinLength(3))
	if got := e.All(); len(got) != 0 {
		t.Fatalf("expected no results, got %v", got)
	}
}

func TestIncompleteGridIsStructuralError(t *testing.T) {
	g, err := puzzle.BuildGrid(3, []rune("abcd"))
	if err != nil {
		t.Fatalf("BuildGrid: %v", err)
	}
	e, err := New(g, dictionary.New([]string{"abc"}))
	if !errors.Is(err, apperrors.ErrIncompleteGrid) {
		t.Fatalf("expected ErrIncompleteGrid, got %v", err)
	}
	if e != nil {
		t.Fatal("expected no engine for an incomplete grid")
	}
}

func TestInvalidMinLength(t *testing.T) {
	g, _ := puzzle.BuildGrid(1, []rune("a"))
	if _, err := New(g, dictionary.New(nil), WithMinLength(0)); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUnknownDirectionRejected(t *testing.T) {
	g, _ := puzzle.BuildGrid(1, []rune("a"))
	_, err := New(g, dictionary.New(nil), WithDirections(puzzle.East, puzzle.Direction(8)))
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestOneByOneGrid(t *testing.T) {
	for _, min := range []int{2, 3, 4} {
		e := newEngine(t, 1, "a", []string{"a", "aa", "aaa"}, WithMinLength(min))
		if got := e.All(); len(got) != 0 {
			t.Errorf("min length %d: expected nothing, got %v", min, got)
		}
	}
}

func TestEveryDirection(t *testing.T) {
	// c a t
	// a a a
	// t a t
	e := newEngine(t, 3, "cataaatat", []string{"cat"}, WithMinLength(3))
	got := render(e.All())
	want := []string{
		"cat (1, 1, s)",
		"cat (1, 1, e)",
		"cat (1, 1, se)",
	}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	// reversed: every word ends at the top-left corner
	e = newEngine(t, 3, "tacaaacac", []string{"cat"}, WithMinLength(3))
	got = render(e.All())
	want = []string{
		"cat (3, 1, w)",
		"cat (1, 3, n)",
		"cat (3, 3, nw)",
	}
	if !slices.Equal(got, want) {
		t.Fatalf("reversed: got %v, want %v", got, want)
	}
}

func TestMinLengthFiltersShortWords(t *testing.T) {
	e := newEngine(t, 4, "getsxxxxxxxxxxxx", []string{"get", "gets"})
	got := render(e.All())
	want := []string{"gets (1, 1, e)"}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDuplicateWordsReportedOnce(t *testing.T) {
	e := newEngine(t, 3, "catqqqzzz", []string{"cat", "cat", "cats"}, WithMinLength(3))
	if got := e.All(); len(got) != 1 {
		t.Fatalf("expected one result, got %v", got)
	}
}

func TestWithDirections(t *testing.T) {
	e := newEngine(t, 3, "cataaatat", []string{"cat"}, WithMinLength(3),
		WithDirections(puzzle.East))
	got := render(e.All())
	if want := []string{"cat (1, 1, e)"}; !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSearchStopsWhenConsumerBreaks(t *testing.T) {
	e := newEngine(t, 3, "cataaatat", []string{"cat"}, WithMinLength(3))
	seq, stats := e.SearchWithStats()
	n := 0
	for range seq {
		n++
		break
	}
	if n != 1 || stats.Found != 1 {
		t.Fatalf("expected exactly one result before stopping, got n=%d found=%d", n, stats.Found)
	}
}

func TestSearchIsIdempotent(t *testing.T) {
	e := randomEngine(t, 42)
	first := e.All()
	second := e.All()
	if !slices.Equal(first, second) {
		t.Fatal("two searches over the same grid differ")
	}
}

func TestSearchParallelMatchesSequential(t *testing.T) {
	for seed := uint64(1); seed <= 5; seed++ {
		e := randomEngine(t, seed)
		want := e.All()
		for _, workers := range []int{1, 3, 16} {
			got, stats, err := e.SearchParallel(context.Background(), workers)
			if err != nil {
				t.Fatalf("SearchParallel: %v", err)
			}
			if !slices.Equal(got, want) {
				t.Fatalf("seed %d workers %d: parallel results differ from sequential", seed, workers)
			}
			if stats.Found != len(want) {
				t.Errorf("stats.Found = %d, want %d", stats.Found, len(want))
			}
		}
	}
}

func TestSearchParallelCancelled(t *testing.T) {
	e := randomEngine(t, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := e.SearchParallel(ctx, 2); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSolveCancelled(t *testing.T) {
	e := randomEngine(t, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, workers := range []int{1, 4} {
		if _, err := e.Solve(ctx, workers); !errors.Is(err, context.Canceled) {
			t.Errorf("Solve(%d) with cancelled context: expected context.Canceled, got %v", workers, err)
		}
	}
}

func TestSolve(t *testing.T) {
	e := randomEngine(t, 7)
	want := e.All()
	for _, workers := range []int{1, 4} {
		sol, err := e.Solve(context.Background(), workers)
		if err != nil {
			t.Fatalf("Solve(%d): %v", workers, err)
		}
		if !slices.Equal(sol.Results, want) {
			t.Fatalf("Solve(%d) results differ from All()", workers)
		}
		if sol.Size != 9 || sol.MinLength != 3 || sol.Stats.Found != len(want) {
			t.Errorf("Solve(%d) = size %d min %d found %d", workers, sol.Size, sol.MinLength, sol.Stats.Found)
		}
	}

	empty := newEngine(t, 2, "qqqq", []string{"cat"}, WithMinLength(2))
	sol, err := empty.Solve(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if sol.Results == nil || len(sol.Results) != 0 {
		t.Errorf("empty solve results = %#v, want a non-nil empty slice", sol.Results)
	}
}

// Found words must read back from the grid, and the engine must agree with a
// brute-force scan of every run.
func TestMatchesBruteForce(t *testing.T) {
	for seed := uint64(1); seed <= 10; seed++ {
		e := randomEngine(t, seed)
		got := e.All()
		for _, r := range got {
			run, ok := e.grid.ReadRun(r.Start(), r.Direction, len([]rune(r.Word)))
			if !ok {
				t.Fatalf("%v runs off the grid", r)
			}
			if run != r.Word {
				t.Fatalf("%v reads back as %q", r, run)
			}
		}
		want := bruteForce(e)
		if !slices.Equal(got, want) {
			t.Fatalf("seed %d: engine found %d words, brute force %d", seed, len(got), len(want))
		}
	}
}

func bruteForce(e *Engine) []Result {
	var out []Result
	for p := range e.grid.Points() {
		for _, d := range e.directions {
			for n := e.minLength; n <= e.grid.Size(); n++ {
				run, ok := e.grid.ReadRun(p, d, n)
				if !ok {
					break
				}
				if e.dict.Contains(run) {
					out = append(out, newResult(run, p, d))
				}
			}
		}
	}
	return out
}

func randomEngine(t testing.TB, seed uint64) *Engine {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, 99))
	const size = 9
	letters := make([]rune, size*size)
	for i := range letters {
		letters[i] = rune('a' + rng.IntN(3))
	}
	words := make([]string, 300)
	for i := range words {
		w := make([]rune, 3+rng.IntN(4))
		for j := range w {
			w[j] = rune('a' + rng.IntN(3))
		}
		words[i] = string(w)
	}
	return newEngine(t, size, string(letters), words, WithMinLength(3))
}

func BenchmarkSearch(b *testing.B) {
	e := randomEngine(b, 1)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for range e.Search() {
		}
	}
}

func BenchmarkSearchParallel(b *testing.B) {
	e := randomEngine(b, 1)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, _, err := e.SearchParallel(context.Background(), 4); err != nil {
			b.Fatal(err)
		}
	}
}
