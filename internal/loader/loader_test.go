package loader

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	apperrors "github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/errors"
)

func TestReadWords(t *testing.T) {
	words, err := ReadWords(strings.NewReader("cat dog\n\tbird\n\nfish  "))
	if err != nil {
		t.Fatalf("ReadWords: %v", err)
	}
	if want := []string{"cat", "dog", "bird", "fish"}; !slices.Equal(words, want) {
		t.Fatalf("got %v, want %v", words, want)
	}
}

func TestReadWordsLimit(t *testing.T) {
	_, err := ReadWordsLimited(strings.NewReader("a b c"), Limits{MaxWords: 2})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestReadPuzzle(t *testing.T) {
	g, err := ReadPuzzle(strings.NewReader("3\nc a t\nx y z\nd o g\n"))
	if err != nil {
		t.Fatalf("ReadPuzzle: %v", err)
	}
	if !g.IsComplete() {
		t.Fatal("expected a complete grid")
	}
	if want := []string{"cat", "xyz", "dog"}; !slices.Equal(g.Rows(), want) {
		t.Fatalf("Rows() = %v, want %v", g.Rows(), want)
	}
}

func TestReadPuzzleErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty", "", apperrors.ErrMalformedPuzzle},
		{"non-integer size", "three a b c", apperrors.ErrMalformedPuzzle},
		{"zero size", "0", apperrors.ErrMalformedPuzzle},
		{"size over maximum", "100000", apperrors.ErrMalformedPuzzle},
		{"size square overflows int", "4294967296", apperrors.ErrMalformedPuzzle},
		{"multi-character token", "2 ab c d e", apperrors.ErrMalformedPuzzle},
		{"too many characters", "2 a b c d e", apperrors.ErrGridOverflow},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadPuzzle(strings.NewReader(tc.input))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestReadPuzzleIncompleteIsReturned(t *testing.T) {
	g, err := ReadPuzzle(strings.NewReader("3 a b c"))
	if err != nil {
		t.Fatalf("ReadPuzzle: %v", err)
	}
	if g.IsComplete() {
		t.Fatal("expected an incomplete grid")
	}
}

func TestReadPuzzleMaxGridSize(t *testing.T) {
	_, err := ReadPuzzleLimited(strings.NewReader("50"), Limits{MaxGridSize: 10})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestReadPuzzleUnicode(t *testing.T) {
	g, err := ReadPuzzle(strings.NewReader("2 é a b ñ"))
	if err != nil {
		t.Fatalf("ReadPuzzle: %v", err)
	}
	if g.Row(0) != "éa" || g.Row(1) != "bñ" {
		t.Fatalf("unexpected rows %v", g.Rows())
	}
}

func TestParseRows(t *testing.T) {
	g, err := ParseRows([]string{"ab", "cd"}, Limits{})
	if err != nil {
		t.Fatalf("ParseRows: %v", err)
	}
	if !g.IsComplete() {
		t.Fatal("expected a complete grid")
	}
	if _, err := ParseRows([]string{"abc", "de"}, Limits{}); !errors.Is(err, apperrors.ErrMalformedPuzzle) {
		t.Fatalf("ragged rows: expected ErrMalformedPuzzle, got %v", err)
	}
	if _, err := ParseRows(nil, Limits{}); !errors.Is(err, apperrors.ErrMalformedPuzzle) {
		t.Fatalf("no rows: expected ErrMalformedPuzzle, got %v", err)
	}
}

func TestParseLetters(t *testing.T) {
	grid, err := ParseLetters(2, "ab\n cd", Limits{})
	if err != nil {
		t.Fatalf("ParseLetters: %v", err)
	}
	if got := grid.Rows(); !slices.Equal(got, []string{"ab", "cd"}) {
		t.Errorf("rows = %v", got)
	}

	grid, err = ParseLetters(2, "abc", Limits{})
	if err != nil || grid.IsComplete() {
		t.Errorf("short input: complete=%v err=%v, want an incomplete grid", grid != nil && grid.IsComplete(), err)
	}

	tests := []struct {
		size    int
		letters string
		limits  Limits
		want    error
	}{
		{2, "abcde", Limits{}, apperrors.ErrGridOverflow},
		{0, "", Limits{}, apperrors.ErrMalformedPuzzle},
		{5, "", Limits{MaxGridSize: 4}, apperrors.ErrInvalidInput},
	}
	for _, tc := range tests {
		if _, err := ParseLetters(tc.size, tc.letters, tc.limits); !errors.Is(err, tc.want) {
			t.Errorf("ParseLetters(%d, %q) err = %v, want %v", tc.size, tc.letters, err, tc.want)
		}
	}
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	wordsPath := filepath.Join(dir, "words.txt")
	puzzlePath := filepath.Join(dir, "puzzle.txt")
	if err := os.WriteFile(wordsPath, []byte("cat\ndog\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(puzzlePath, []byte("2\na b\nc d\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	words, err := LoadWordsFile(wordsPath, Limits{})
	if err != nil || len(words) != 2 {
		t.Fatalf("LoadWordsFile = %v, %v", words, err)
	}
	g, err := LoadPuzzleFile(puzzlePath, Limits{})
	if err != nil || !g.IsComplete() {
		t.Fatalf("LoadPuzzleFile = %v, %v", g, err)
	}

	if _, err := LoadWordsFile(filepath.Join(dir, "missing.txt"), Limits{}); !errors.Is(err, apperrors.ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
	if _, err := LoadPuzzleFile(filepath.Join(dir, "missing.txt"), Limits{}); !errors.Is(err, apperrors.ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
}
