package cache

import (
	"context"
	"errors"
	"path"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/wordsearch/internal/puzzle"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/internal/solver"
	pkgredis "github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/resilience"
)

type memBackend struct {
	mu   sync.Mutex
	data map[string]string
	err  error
}

func newMemBackend() *memBackend {
	return &memBackend{data: make(map[string]string)}
}

func (m *memBackend) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	v, ok := m.data[key]
	if !ok {
		return "", pkgredis.ErrNil
	}
	return v, nil
}

func (m *memBackend) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = string(value.([]byte))
	return nil
}

func (m *memBackend) FlushByPattern(_ context.Context, pattern string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k := range m.data {
		if ok, _ := path.Match(pattern, k); ok {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

func sampleSolution() *solver.Solution {
	return &solver.Solution{
		Size:      2,
		MinLength: 2,
		Results:   []solver.Result{{Word: "ab", Column: 1, Row: 1, Direction: puzzle.East}},
	}
}

func TestKeyDependsOnEveryField(t *testing.T) {
	base := Key{Rows: []string{"ab", "cd"}, Fingerprint: "f1", MinLength: 4}
	variants := []Key{
		{Rows: []string{"ab", "ce"}, Fingerprint: "f1", MinLength: 4},
		{Rows: []string{"ab", "cd"}, Fingerprint: "f2", MinLength: 4},
		{Rows: []string{"ab", "cd"}, Fingerprint: "f1", MinLength: 3},
		{Rows: []string{"abcd"}, Fingerprint: "f1", MinLength: 4},
	}
	for _, v := range variants {
		if v.String() == base.String() {
			t.Errorf("key %+v collides with %+v", v, base)
		}
	}
	if base.String() != (Key{Rows: []string{"ab", "cd"}, Fingerprint: "f1", MinLength: 4}).String() {
		t.Error("equal keys hash differently")
	}
}

func TestGetOrComputeCachesResult(t *testing.T) {
	c := New(newMemBackend(), time.Minute, nil)
	key := Key{Rows: []string{"ab", "cd"}, Fingerprint: "f", MinLength: 2}
	var calls int
	compute := func(context.Context) (*solver.Solution, error) {
		calls++
		return sampleSolution(), nil
	}

	sol, hit, err := c.GetOrCompute(context.Background(), key, compute)
	if err != nil || hit {
		t.Fatalf("first call: hit=%v err=%v", hit, err)
	}
	sol2, hit, err := c.GetOrCompute(context.Background(), key, compute)
	if err != nil || !hit {
		t.Fatalf("second call: hit=%v err=%v", hit, err)
	}
	if calls != 1 {
		t.Errorf("compute ran %d times, want 1", calls)
	}
	if sol2.Results[0] != sol.Results[0] {
		t.Errorf("cached result %+v differs from %+v", sol2.Results[0], sol.Results[0])
	}
	if hits, misses := c.Stats(); hits != 1 || misses != 1 {
		t.Errorf("stats = %d hits %d misses, want 1/1", hits, misses)
	}
}

func TestGetOrComputeCollapsesConcurrentCalls(t *testing.T) {
	c := New(nil, time.Minute, nil)
	key := Key{Rows: []string{"x"}, Fingerprint: "f", MinLength: 1}
	release := make(chan struct{})
	var calls atomic.Int32

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			_, _, err := c.GetOrCompute(context.Background(), key, func(context.Context) (*solver.Solution, error) {
				calls.Add(1)
				<-release
				return sampleSolution(), nil
			})
			if err != nil {
				t.Error(err)
			}
		})
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	if calls.Load() < 1 || calls.Load() > 8 {
		t.Fatalf("compute calls = %d", calls.Load())
	}
}

func TestCancelledCallerDoesNotFailOthers(t *testing.T) {
	c := New(nil, time.Minute, nil)
	key := Key{Rows: []string{"x"}, Fingerprint: "f", MinLength: 1}
	started := make(chan struct{})
	release := make(chan struct{})
	compute := func(ctx context.Context) (*solver.Solution, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return sampleSolution(), nil
	}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, _, err := c.GetOrCompute(firstCtx, key, compute)
		firstErr <- err
	}()
	<-started

	type result struct {
		sol *solver.Solution
		err error
	}
	second := make(chan result, 1)
	go func() {
		sol, _, err := c.GetOrCompute(context.Background(), key, func(context.Context) (*solver.Solution, error) {
			t.Error("second caller ran its own compute")
			return nil, nil
		})
		second <- result{sol, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller: err = %v, want context.Canceled", err)
	}
	close(release)

	got := <-second
	if got.err != nil {
		t.Fatalf("waiting caller failed: %v", got.err)
	}
	if got.sol == nil || len(got.sol.Results) == 0 {
		t.Fatalf("waiting caller got %+v", got.sol)
	}
}

func TestComputeErrorIsNotCached(t *testing.T) {
	backend := newMemBackend()
	c := New(backend, time.Minute, nil)
	key := Key{Rows: []string{"x"}, Fingerprint: "f", MinLength: 1}
	errSolve := errors.New("solve failed")

	if _, _, err := c.GetOrCompute(context.Background(), key, func(context.Context) (*solver.Solution, error) {
		return nil, errSolve
	}); !errors.Is(err, errSolve) {
		t.Fatalf("err = %v, want errSolve", err)
	}
	if len(backend.data) != 0 {
		t.Fatalf("failed solve was cached: %v", backend.data)
	}
}

func TestBackendFailureTripsBreakerButNotMisses(t *testing.T) {
	backend := newMemBackend()
	breaker := resilience.NewCircuitBreaker("redis", resilience.CircuitBreakerConfig{
		FailureThreshold: 2,
		ResetTimeout:     time.Hour,
		IsFailure:        IsFailure,
	})
	c := New(backend, time.Minute, breaker)
	key := Key{Rows: []string{"x"}, Fingerprint: "f", MinLength: 1}

	for range 3 {
		if _, ok := c.Get(context.Background(), key); ok {
			t.Fatal("unexpected hit")
		}
	}
	if breaker.GetState() != resilience.StateClosed {
		t.Fatalf("plain misses tripped the breaker")
	}

	backend.err = errors.New("connection reset")
	for range 2 {
		c.Get(context.Background(), key)
	}
	if breaker.GetState() != resilience.StateOpen {
		t.Fatalf("state = %v, want open", breaker.GetState())
	}

	sol, hit, err := c.GetOrCompute(context.Background(), key, func(context.Context) (*solver.Solution, error) {
		return sampleSolution(), nil
	})
	if err != nil || hit || sol == nil {
		t.Fatalf("open breaker should fall through to compute: hit=%v err=%v", hit, err)
	}
}

func TestInvalidate(t *testing.T) {
	backend := newMemBackend()
	backend.data["unrelated"] = "keep"
	c := New(backend, time.Minute, nil)
	for _, row := range []string{"a", "b", "c"} {
		c.Set(context.Background(), Key{Rows: []string{row}, Fingerprint: "f", MinLength: 1}, sampleSolution())
	}
	n, err := c.Invalidate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("deleted %d keys, want 3", n)
	}
	if _, ok := backend.data["unrelated"]; !ok {
		t.Error("invalidate removed a key outside the cache prefix")
	}
}

func TestDisabledCache(t *testing.T) {
	c := New(nil, time.Minute, nil)
	if c.Enabled() {
		t.Fatal("cache without backend reports enabled")
	}
	if n, err := c.Invalidate(context.Background()); n != 0 || err != nil {
		t.Fatalf("Invalidate = %d, %v", n, err)
	}
}
