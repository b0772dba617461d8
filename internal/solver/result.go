package solver

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/wordsearch/internal/puzzle"
)

// Result is one word found in the grid. Column and Row are 1-indexed.
type Result struct {
	Word      string           `json:"word"`
	Column    int              `json:"column"`
	Row       int              `json:"row"`
	Direction puzzle.Direction `json:"direction"`
}

func newResult(word string, start puzzle.Point, d puzzle.Direction) Result {
	return Result{
		Word:      word,
		Column:    start.X + 1,
		Row:       start.Y + 1,
		Direction: d,
	}
}

// Start converts the 1-indexed coordinates back to a grid point.
func (r Result) Start() puzzle.Point {
	return puzzle.Point{X: r.Column - 1, Y: r.Row - 1}
}

// String renders "word (col, row, dir)".
func (r Result) String() string {
	return fmt.Sprintf("%s (%d, %d, %s)", r.Word, r.Column, r.Row, r.Direction)
}
