package puzzle

import (
	"fmt"
	"iter"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/errors"
)

// Point is a cell coordinate: X is the column, Y the row.
type Point struct {
	X int
	Y int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Grid is a square matrix of runes filled in row-major order. It is safe for
// concurrent reads once complete.
type Grid struct {
	size   int
	cells  []rune
	filled int
}

// MaxSize is the largest side length NewGrid accepts. Its square fits in an
// int on every platform.
const MaxSize = 4096

// NewGrid returns an empty size×size grid.
func NewGrid(size int) (*Grid, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: grid size must be positive, got %d", apperrors.ErrMalformedPuzzle, size)
	}
	if size > MaxSize {
		return nil, fmt.Errorf("%w: grid size %d exceeds maximum %d", apperrors.ErrMalformedPuzzle, size, MaxSize)
	}
	return &Grid{
		size:  size,
		cells: make([]rune, size*size),
	}, nil
}

// BuildGrid creates a grid and fills it from runes. The grid may come back
// incomplete; callers decide whether that is fatal.
func BuildGrid(size int, runes []rune) (*Grid, error) {
	g, err := NewGrid(size)
	if err != nil {
		return nil, err
	}
	for _, r := range runes {
		if err := g.Add(r); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Add places r in the next free cell.
func (g *Grid) Add(r rune) error {
	if g.filled >= len(g.cells) {
		return fmt.Errorf("%w: %d×%d grid holds %d characters", apperrors.ErrGridOverflow, g.size, g.size, len(g.cells))
	}
	g.cells[g.filled] = r
	g.filled++
	return nil
}

// Populate adds every rune of seq, stopping at the first overflow.
func (g *Grid) Populate(seq iter.Seq[rune]) error {
	for r := range seq {
		if err := g.Add(r); err != nil {
			return err
		}
	}
	return nil
}

// IsComplete reports whether exactly size² runes were supplied.
func (g *Grid) IsComplete() bool {
	return g.filled == len(g.cells)
}

// Filled returns how many cells have been populated.
func (g *Grid) Filled() int { return g.filled }

func (g *Grid) Size() int { return g.size }

func (g *Grid) inBounds(x, y int) bool {
	return x >= 0 && x < g.size && y >= 0 && y < g.size
}

// Cell returns the rune at p. p must be in bounds.
func (g *Grid) Cell(p Point) rune {
	return g.cells[p.Y*g.size+p.X]
}

// ReadAt returns the cell exactly offset steps from start in direction d.
// ok is false when that cell is off the grid.
func (g *Grid) ReadAt(start Point, d Direction, offset int) (r rune, ok bool) {
	dx, dy := d.Delta()
	x, y := start.X+dx*offset, start.Y+dy*offset
	if !g.inBounds(x, y) {
		return 0, false
	}
	return g.cells[y*g.size+x], true
}

// ReadRun returns length runes starting at start and stepping by d. ok is
// false if any step leaves the grid; a zero length run is ("", true).
func (g *Grid) ReadRun(start Point, d Direction, length int) (run string, ok bool) {
	if length < 0 {
		return "", false
	}
	dx, dy := d.Delta()
	endX, endY := start.X+dx*(length-1), start.Y+dy*(length-1)
	if length > 0 && (!g.inBounds(start.X, start.Y) || !g.inBounds(endX, endY)) {
		return "", false
	}
	var b strings.Builder
	b.Grow(length)
	x, y := start.X, start.Y
	for i := 0; i < length; i++ {
		b.WriteRune(g.cells[y*g.size+x])
		x += dx
		y += dy
	}
	return b.String(), true
}

// Points yields every cell in row-major order.
func (g *Grid) Points() iter.Seq[Point] {
	return func(yield func(Point) bool) {
		for y := 0; y < g.size; y++ {
			for x := 0; x < g.size; x++ {
				if !yield(Point{X: x, Y: y}) {
					return
				}
			}
		}
	}
}

// Row returns row y as a string.
func (g *Grid) Row(y int) string {
	return string(g.cells[y*g.size : (y+1)*g.size])
}

// Rows returns every row, top to bottom.
func (g *Grid) Rows() []string {
	rows := make([]string, g.size)
	for y := range rows {
		rows[y] = g.Row(y)
	}
	return rows
}
