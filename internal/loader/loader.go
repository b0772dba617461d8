// Package loader reads word lists and puzzle files.
//
// A word list is any whitespace-separated sequence of words. A puzzle file
// starts with the grid size N followed by N² single-character tokens in
// row-major order, for example:
//
//	3
//	c a t
//	x y z
//	d o g
package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/Adithya-Monish-Kumar-K/wordsearch/internal/puzzle"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/errors"
)

// Limits bounds what a loader accepts. Zero means unlimited.
type Limits struct {
	MaxGridSize int
	MaxWords    int
}

// ReadWords returns every whitespace-separated token in r.
func ReadWords(r io.Reader) ([]string, error) {
	return ReadWordsLimited(r, Limits{})
}

func ReadWordsLimited(r io.Reader, limits Limits) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	var words []string
	for sc.Scan() {
		if limits.MaxWords > 0 && len(words) == limits.MaxWords {
			return nil, fmt.Errorf("%w: word list exceeds %d words", apperrors.ErrInvalidInput, limits.MaxWords)
		}
		words = append(words, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading word list: %w", err)
	}
	return words, nil
}

// ReadPuzzle parses a size header and the grid characters. A grid with too
// few characters is returned as-is; the solver rejects it.
func ReadPuzzle(r io.Reader) (*puzzle.Grid, error) {
	return ReadPuzzleLimited(r, Limits{})
}

func ReadPuzzleLimited(r io.Reader, limits Limits) (*puzzle.Grid, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("reading puzzle: %w", err)
		}
		return nil, fmt.Errorf("%w: missing size header", apperrors.ErrMalformedPuzzle)
	}
	header := sc.Text()
	size, err := strconv.Atoi(header)
	if err != nil {
		return nil, fmt.Errorf("%w: size header %q is not an integer", apperrors.ErrMalformedPuzzle, header)
	}
	if limits.MaxGridSize > 0 && size > limits.MaxGridSize {
		return nil, fmt.Errorf("%w: grid size %d exceeds limit %d", apperrors.ErrInvalidInput, size, limits.MaxGridSize)
	}
	grid, err := puzzle.NewGrid(size)
	if err != nil {
		return nil, err
	}

	for pos := 1; sc.Scan(); pos++ {
		tok := sc.Text()
		ch, n := utf8.DecodeRuneInString(tok)
		if n != len(tok) || ch == utf8.RuneError {
			return nil, fmt.Errorf("%w: token %d (%q) is not a single character", apperrors.ErrMalformedPuzzle, pos, tok)
		}
		if err := grid.Add(ch); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading puzzle: %w", err)
	}
	return grid, nil
}

// ParseRows builds a grid from N rows of N characters each.
func ParseRows(rows []string, limits Limits) (*puzzle.Grid, error) {
	size := len(rows)
	if limits.MaxGridSize > 0 && size > limits.MaxGridSize {
		return nil, fmt.Errorf("%w: grid size %d exceeds limit %d", apperrors.ErrInvalidInput, size, limits.MaxGridSize)
	}
	grid, err := puzzle.NewGrid(size)
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		if n := utf8.RuneCountInString(row); n != size {
			return nil, fmt.Errorf("%w: row %d has %d characters, want %d", apperrors.ErrMalformedPuzzle, y+1, n, size)
		}
		for _, ch := range row {
			if err := grid.Add(ch); err != nil {
				return nil, err
			}
		}
	}
	return grid, nil
}

// ParseLetters builds a size×size grid from letters in row-major order.
// Whitespace between letters is ignored. Like ReadPuzzle, too few letters
// yield an incomplete grid rather than an error.
func ParseLetters(size int, letters string, limits Limits) (*puzzle.Grid, error) {
	if limits.MaxGridSize > 0 && size > limits.MaxGridSize {
		return nil, fmt.Errorf("%w: grid size %d exceeds limit %d", apperrors.ErrInvalidInput, size, limits.MaxGridSize)
	}
	grid, err := puzzle.NewGrid(size)
	if err != nil {
		return nil, err
	}
	err = grid.Populate(func(yield func(rune) bool) {
		for _, r := range letters {
			if unicode.IsSpace(r) {
				continue
			}
			if !yield(r) {
				return
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return grid, nil
}

// LoadWordsFile reads a word list from path.
func LoadWordsFile(path string, limits Limits) ([]string, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	words, err := ReadWordsLimited(f, limits)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return words, nil
}

// LoadPuzzleFile reads a puzzle from path.
func LoadPuzzleFile(path string, limits Limits) (*puzzle.Grid, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	grid, err := ReadPuzzleLimited(f, limits)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return grid, nil
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrMissingInput, path)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, nil
}
