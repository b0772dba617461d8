// Command wordsearch solves a word-search puzzle from files and prints every
// dictionary word it finds, one per line, as "word (column, row, direction)".
//
// Usage:
//
//	wordsearch [-words words.txt] [-puzzle puzzle.txt] [-min-length 4] [-parallel 0] [-config file.yaml]
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Adithya-Monish-Kumar-K/wordsearch/internal/dictionary"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/internal/loader"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/internal/solver"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("wordsearch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to config file")
	wordsPath := fs.String("words", "", "word list file (default words.txt)")
	puzzlePath := fs.String("puzzle", "", "puzzle file (default puzzle.txt)")
	minLength := fs.Int("min-length", 0, "shortest word to report (default 4)")
	workers := fs.Int("parallel", 0, "search rows on this many goroutines; 0 searches sequentially")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(stderr, "loading .env: %v\n", err)
		return 1
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return 1
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "words":
			cfg.Input.WordsPath = *wordsPath
		case "puzzle":
			cfg.Input.PuzzlePath = *puzzlePath
		case "min-length":
			cfg.Search.MinWordLength = *minLength
		}
	})
	logger.SetupWriter(stderr, cfg.Logging.Level, cfg.Logging.Format)

	if err := solve(ctx, cfg, *workers, stdout); err != nil {
		fmt.Fprintf(stderr, "wordsearch: %v\n", err)
		return 1
	}
	return 0
}

func solve(ctx context.Context, cfg *config.Config, workers int, stdout io.Writer) error {
	limits := loader.Limits{MaxGridSize: cfg.Search.MaxGridSize, MaxWords: cfg.Search.MaxWords}
	words, err := loader.LoadWordsFile(cfg.Input.WordsPath, limits)
	if err != nil {
		return err
	}
	grid, err := loader.LoadPuzzleFile(cfg.Input.PuzzlePath, limits)
	if err != nil {
		return err
	}
	dict := dictionary.New(words)
	engine, err := solver.New(grid, dict, solver.WithMinLength(cfg.Search.MinWordLength))
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.Input.PuzzlePath, err)
	}
	slog.Debug("inputs loaded",
		"words", dict.Len(),
		"grid_size", grid.Size(),
		"min_length", engine.MinLength(),
	)

	out := bufio.NewWriter(stdout)
	if workers > 0 {
		results, _, err := engine.SearchParallel(ctx, workers)
		if err != nil {
			return err
		}
		for _, r := range results {
			fmt.Fprintln(out, r)
		}
	} else {
		for r := range engine.Search() {
			fmt.Fprintln(out, r)
		}
	}
	return out.Flush()
}
