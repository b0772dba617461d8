// Package puzzle holds the word-search grid and the eight scan directions.
//
// Coordinates follow a single convention throughout: x is the column within a
// row and y is the row, both 0-indexed. Cells are populated in row-major order,
// so the first rune supplied lands at (0, 0) and the second at (1, 0).
package puzzle

import "fmt"

// Direction is a unit step on the grid.
type Direction int

const (
	North Direction = iota
	South
	East
	West
	NorthEast
	NorthWest
	SouthEast
	SouthWest
)

type offset struct{ dx, dy int }

var offsets = [...]offset{
	North:     {0, -1},
	South:     {0, 1},
	East:      {1, 0},
	West:      {-1, 0},
	NorthEast: {1, -1},
	NorthWest: {-1, -1},
	SouthEast: {1, 1},
	SouthWest: {-1, 1},
}

var names = [...]string{
	North:     "n",
	South:     "s",
	East:      "e",
	West:      "w",
	NorthEast: "ne",
	NorthWest: "nw",
	SouthEast: "se",
	SouthWest: "sw",
}

// Directions lists every direction in scan order. Search results are emitted
// in this order for a given start cell.
var Directions = []Direction{North, South, East, West, NorthEast, NorthWest, SouthEast, SouthWest}

// Delta returns the (dx, dy) step for d.
func (d Direction) Delta() (dx, dy int) {
	o := offsets[d]
	return o.dx, o.dy
}

// Valid reports whether d is one of the eight directions.
func (d Direction) Valid() bool {
	return d >= 0 && int(d) < len(offsets)
}

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return names[d]
}

// ParseDirection accepts the short names produced by String.
func ParseDirection(s string) (Direction, error) {
	for i, n := range names {
		if n == s {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// MarshalText lets directions travel as "ne" rather than 4 in JSON.
func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid direction %d", int(d))
	}
	return []byte(names[d]), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	parsed, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
