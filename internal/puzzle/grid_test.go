package puzzle

import (
	"errors"
	"math"
	"slices"
	"testing"

	apperrors "github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/errors"
)

func mustGrid(t *testing.T, size int, letters string) *Grid {
	t.Helper()
	g, err := BuildGrid(size, []rune(letters))
	if err != nil {
		t.Fatalf("BuildGrid(%d, %q): %v", size, letters, err)
	}
	return g
}

func TestBuildGridRowMajor(t *testing.T) {
	g := mustGrid(t, 3, "abcdefghi")
	if !g.IsComplete() {
		t.Fatal("expected grid to be complete")
	}
	want := []string{"abc", "def", "ghi"}
	if got := g.Rows(); !slices.Equal(got, want) {
		t.Fatalf("Rows() = %v, want %v", got, want)
	}
	if got := g.Cell(Point{X: 2, Y: 0}); got != 'c' {
		t.Errorf("Cell(2,0) = %q, want 'c'", got)
	}
	if got := g.Cell(Point{X: 0, Y: 2}); got != 'g' {
		t.Errorf("Cell(0,2) = %q, want 'g'", got)
	}
}

func TestGridOverflow(t *testing.T) {
	_, err := BuildGrid(2, []rune("abcde"))
	if !errors.Is(err, apperrors.ErrGridOverflow) {
		t.Fatalf("expected ErrGridOverflow, got %v", err)
	}
}

func TestGridIncomplete(t *testing.T) {
	g := mustGrid(t, 3, "abcd")
	if g.IsComplete() {
		t.Fatal("grid with 4 of 9 cells reported complete")
	}
	if g.Filled() != 4 {
		t.Errorf("Filled() = %d, want 4", g.Filled())
	}
}

func TestNewGridRejectsBadSize(t *testing.T) {
	for _, size := range []int{0, -3, MaxSize + 1, math.MaxInt} {
		if _, err := NewGrid(size); !errors.Is(err, apperrors.ErrMalformedPuzzle) {
			t.Errorf("NewGrid(%d): expected ErrMalformedPuzzle, got %v", size, err)
		}
	}
}

func TestReadRun(t *testing.T) {
	g := mustGrid(t, 3, "abcdefghi")
	tests := []struct {
		start  Point
		dir    Direction
		length int
		want   string
		ok     bool
	}{
		{Point{0, 0}, East, 3, "abc", true},
		{Point{0, 0}, South, 3, "adg", true},
		{Point{0, 0}, SouthEast, 3, "aei", true},
		{Point{2, 2}, NorthWest, 3, "iea", true},
		{Point{0, 2}, NorthEast, 3, "gec", true},
		{Point{2, 0}, SouthWest, 3, "ceg", true},
		{Point{2, 1}, West, 2, "fe", true},
		{Point{1, 2}, North, 3, "heb", true},
		{Point{1, 0}, East, 3, "", false},
		{Point{0, 0}, North, 2, "", false},
		{Point{1, 1}, East, 0, "", true},
	}
	for _, tc := range tests {
		got, ok := g.ReadRun(tc.start, tc.dir, tc.length)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ReadRun(%v, %v, %d) = (%q, %v), want (%q, %v)",
				tc.start, tc.dir, tc.length, got, ok, tc.want, tc.ok)
		}
	}
}

func TestReadAtDistinguishesOffGrid(t *testing.T) {
	g := mustGrid(t, 2, "a b ")
	if r, ok := g.ReadAt(Point{0, 0}, East, 1); !ok || r != ' ' {
		t.Errorf("in-bounds space: got (%q, %v)", r, ok)
	}
	if _, ok := g.ReadAt(Point{0, 0}, East, 2); ok {
		t.Error("expected off-grid read to report ok=false")
	}
}

func TestPointsRowMajor(t *testing.T) {
	g := mustGrid(t, 2, "abcd")
	var got []Point
	for p := range g.Points() {
		got = append(got, p)
	}
	want := []Point{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	if !slices.Equal(got, want) {
		t.Fatalf("Points() = %v, want %v", got, want)
	}
}

func TestDirectionValid(t *testing.T) {
	for _, d := range Directions {
		if !d.Valid() {
			t.Errorf("%v reported invalid", d)
		}
	}
	for _, d := range []Direction{-1, SouthWest + 1, 42} {
		if d.Valid() {
			t.Errorf("Direction(%d) reported valid", int(d))
		}
	}
}

func TestDirectionText(t *testing.T) {
	for _, d := range Directions {
		b, err := d.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d): %v", d, err)
		}
		var back Direction
		if err := back.UnmarshalText(b); err != nil || back != d {
			t.Errorf("round trip %v: got %v, err %v", d, back, err)
		}
	}
	if _, err := ParseDirection("up"); err == nil {
		t.Error("expected error for unknown direction")
	}
}
