package main

import (
	"encoding/json"
	"math/rand/v2"
	"testing"
	"time"
	"unicode/utf8"
)

func TestGeneratePuzzles(t *testing.T) {
	puzzles := generatePuzzles(rand.New(rand.NewPCG(1, 0)), 3, 4, []rune("ab"))
	if len(puzzles) != 3 {
		t.Fatalf("got %d puzzles", len(puzzles))
	}
	for _, body := range puzzles {
		var req struct {
			Size    int    `json:"size"`
			Letters string `json:"letters"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatal(err)
		}
		if req.Size != 4 || utf8.RuneCountInString(req.Letters) != 16 {
			t.Errorf("puzzle %s has the wrong shape", body)
		}
	}
}

func TestPercentile(t *testing.T) {
	sorted := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	tests := map[float64]time.Duration{50: 5, 90: 9, 99: 10, 0: 1}
	for p, want := range tests {
		if got := percentile(sorted, p); got != want {
			t.Errorf("percentile(%v) = %v, want %v", p, got, want)
		}
	}
}
