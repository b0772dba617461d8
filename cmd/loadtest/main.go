// Command loadtest drives POST /api/v1/solve with random puzzles from a pool
// of workers and prints a latency report.
//
// A small -distinct value makes most requests repeat a puzzle, which
// exercises the solve cache; a large one keeps the cache cold.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"math/rand/v2"
	"net/http"
	"os"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type Config struct {
	BaseURL     string
	Concurrency int
	Duration    time.Duration
	Puzzles     [][]byte
}

type Stats struct {
	totalRequests atomic.Int64
	successCount  atomic.Int64
	errorCount    atomic.Int64
	cacheHits     atomic.Int64
	wordsFound    atomic.Int64
	mu            sync.Mutex
	latencies     []time.Duration
	statusCodes   map[int]int64
}

func NewStats() *Stats {
	return &Stats{
		latencies:   make([]time.Duration, 0, 100000),
		statusCodes: make(map[int]int64),
	}
}

func (s *Stats) Record(d time.Duration, status int, err error) {
	s.totalRequests.Add(1)
	if err != nil {
		s.errorCount.Add(1)
		return
	}
	if status >= 200 && status < 300 {
		s.successCount.Add(1)
	} else {
		s.errorCount.Add(1)
	}
	s.mu.Lock()
	s.latencies = append(s.latencies, d)
	s.statusCodes[status]++
	s.mu.Unlock()
}

type solveResponse struct {
	Count    int  `json:"count"`
	CacheHit bool `json:"cache_hit"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the word search server")
	concurrency := flag.Int("concurrency", 10, "number of concurrent workers")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	size := flag.Int("size", 15, "grid side length")
	alphabet := flag.String("alphabet", "abcdefghijklmnopqrstuvwxyz", "letters to fill grids with")
	distinct := flag.Int("distinct", 50, "number of distinct puzzles to cycle through")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed")
	flag.Parse()

	if *size < 1 || *distinct < 1 || *alphabet == "" {
		fmt.Fprintln(os.Stderr, "size and distinct must be positive and alphabet non-empty")
		os.Exit(2)
	}

	cfg := Config{
		BaseURL:     strings.TrimRight(*baseURL, "/"),
		Concurrency: *concurrency,
		Duration:    *duration,
		Puzzles:     generatePuzzles(rand.New(rand.NewPCG(*seed, 0)), *distinct, *size, []rune(*alphabet)),
	}

	fmt.Println("=== Word Search Load Test ===")
	fmt.Printf("Target:      %s\n", cfg.BaseURL)
	fmt.Printf("Concurrency: %d\n", cfg.Concurrency)
	fmt.Printf("Duration:    %s\n", cfg.Duration)
	fmt.Printf("Puzzles:     %d distinct, %dx%d\n", len(cfg.Puzzles), *size, *size)
	fmt.Println()

	stats := runLoadTest(cfg)
	printReport(stats, cfg.Duration)
}

func generatePuzzles(rng *rand.Rand, n, size int, alphabet []rune) [][]byte {
	puzzles := make([][]byte, n)
	for i := range puzzles {
		letters := make([]rune, size*size)
		for j := range letters {
			letters[j] = alphabet[rng.IntN(len(alphabet))]
		}
		body, _ := json.Marshal(map[string]any{"size": size, "letters": string(letters)})
		puzzles[i] = body
	}
	return puzzles
}

func runLoadTest(cfg Config) *Stats {
	stats := NewStats()
	client := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        cfg.Concurrency * 2,
			MaxIdleConnsPerHost: cfg.Concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	solveURL := cfg.BaseURL + "/api/v1/solve"
	var wg sync.WaitGroup
	fmt.Print("Running")
	for w := range cfg.Concurrency {
		wg.Go(func() {
			for i := w; ctx.Err() == nil; i++ {
				body := cfg.Puzzles[i%len(cfg.Puzzles)]
				start := time.Now()
				status, resp, err := post(ctx, client, solveURL, body)
				d := time.Since(start)
				if ctx.Err() != nil {
					return
				}
				stats.Record(d, status, err)
				if err == nil && status == http.StatusOK {
					stats.wordsFound.Add(int64(resp.Count))
					if resp.CacheHit {
						stats.cacheHits.Add(1)
					}
				}
			}
		})
	}

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Print(".")
			}
		}
	}()

	wg.Wait()
	fmt.Println(" done!")
	fmt.Println()
	return stats
}

func post(ctx context.Context, client *http.Client, url string, body []byte) (int, solveResponse, error) {
	var out solveResponse
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, out, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return 0, out, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return resp.StatusCode, out, fmt.Errorf("decoding response: %w", err)
		}
	}
	return resp.StatusCode, out, nil
}

func printReport(stats *Stats, duration time.Duration) {
	total := stats.totalRequests.Load()
	success := stats.successCount.Load()
	errs := stats.errorCount.Load()

	fmt.Println("=== Results ===")
	fmt.Printf("Total Requests:  %d\n", total)
	fmt.Printf("Successful:      %d\n", success)
	fmt.Printf("Errors:          %d\n", errs)
	if total > 0 {
		fmt.Printf("Error Rate:      %.2f%%\n", float64(errs)/float64(total)*100)
		fmt.Printf("Requests/sec:    %.2f\n", float64(total)/duration.Seconds())
	}
	if success > 0 {
		fmt.Printf("Cache Hit Rate:  %.2f%%\n", float64(stats.cacheHits.Load())/float64(success)*100)
		fmt.Printf("Words/solve:     %.1f\n", float64(stats.wordsFound.Load())/float64(success))
	}

	stats.mu.Lock()
	latencies := slices.Clone(stats.latencies)
	codes := make([]int, 0, len(stats.statusCodes))
	for code := range stats.statusCodes {
		codes = append(codes, code)
	}
	stats.mu.Unlock()

	if len(latencies) > 0 {
		slices.Sort(latencies)
		var sum time.Duration
		for _, l := range latencies {
			sum += l
		}
		avg := sum / time.Duration(len(latencies))

		fmt.Println()
		fmt.Println("=== Latency ===")
		fmt.Printf("Min:    %s\n", latencies[0])
		fmt.Printf("Avg:    %s\n", avg)
		fmt.Printf("P50:    %s\n", percentile(latencies, 50))
		fmt.Printf("P90:    %s\n", percentile(latencies, 90))
		fmt.Printf("P95:    %s\n", percentile(latencies, 95))
		fmt.Printf("P99:    %s\n", percentile(latencies, 99))
		fmt.Printf("Max:    %s\n", latencies[len(latencies)-1])
	}

	fmt.Println()
	fmt.Println("=== Status Codes ===")
	slices.Sort(codes)
	stats.mu.Lock()
	for _, code := range codes {
		fmt.Printf("  %d: %d\n", code, stats.statusCodes[code])
	}
	stats.mu.Unlock()

	if total == 0 {
		fmt.Println()
		fmt.Println("WARNING: No requests completed. Is the server running?")
		os.Exit(1)
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	return sorted[max(0, min(idx, len(sorted)-1))]
}
