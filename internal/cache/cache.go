// Package cache memoises puzzle solutions in Redis. Keys are derived from the
// grid rows, the dictionary fingerprint, and the minimum word length, so a
// dictionary reload never serves stale results.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/wordsearch/internal/solver"
	pkgredis "github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/resilience"
)

const keyPrefix = "wordsearch:solve:"

// Backend is the subset of the Redis client the cache needs. Get must return
// an error satisfying pkgredis.IsNilError for a missing key.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// Key identifies one solve request.
type Key struct {
	Rows        []string
	Fingerprint string
	MinLength   int
}

func (k Key) String() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%d\x00", k.Fingerprint, k.MinLength)
	h.Write([]byte(strings.Join(k.Rows, "\n")))
	return keyPrefix + hex.EncodeToString(h.Sum(nil)[:16])
}

// SolveCache stores solutions in a Backend behind a circuit breaker and
// collapses concurrent identical solves into one computation. A nil backend
// turns it into a pass-through that still deduplicates in-flight solves.
type SolveCache struct {
	backend Backend
	ttl     time.Duration
	breaker *resilience.CircuitBreaker
	group   singleflight.Group
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New creates a SolveCache. breaker may be nil.
func New(backend Backend, ttl time.Duration, breaker *resilience.CircuitBreaker) *SolveCache {
	return &SolveCache{
		backend: backend,
		ttl:     ttl,
		breaker: breaker,
		logger:  slog.Default().With("component", "solve-cache"),
	}
}

// Enabled reports whether a backend is configured.
func (c *SolveCache) Enabled() bool {
	return c != nil && c.backend != nil
}

// Get looks the key up. Backend failures are logged and reported as misses.
func (c *SolveCache) Get(ctx context.Context, key Key) (*solver.Solution, bool) {
	if !c.Enabled() {
		return nil, false
	}
	k := key.String()
	var data string
	err := c.protect(func() error {
		var err error
		data, err = c.backend.Get(ctx, k)
		return err
	})
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Warn("cache get failed", "key", k, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var sol solver.Solution
	if err := json.Unmarshal([]byte(data), &sol); err != nil {
		c.logger.Error("cache entry corrupt", "key", k, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return &sol, true
}

// Set stores sol under key. Failures are logged and otherwise ignored.
func (c *SolveCache) Set(ctx context.Context, key Key, sol *solver.Solution) {
	if !c.Enabled() {
		return
	}
	k := key.String()
	data, err := json.Marshal(sol)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", k, "error", err)
		return
	}
	if err := c.protect(func() error { return c.backend.Set(ctx, k, data, c.ttl) }); err != nil {
		c.logger.Warn("cache set failed", "key", k, "error", err)
	}
}

// GetOrCompute returns the cached solution for key, or runs compute once for
// all concurrent callers with the same key and caches its result. The bool
// is true when the solution came from the cache.
//
// compute receives ctx's values without its cancellation: the shared solve
// outlives any single caller. Each caller stops waiting when its own ctx is
// done.
func (c *SolveCache) GetOrCompute(ctx context.Context, key Key, compute func(ctx context.Context) (*solver.Solution, error)) (*solver.Solution, bool, error) {
	if sol, ok := c.Get(ctx, key); ok {
		return sol, true, nil
	}
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key.String(), func() (any, error) {
		sol, err := compute(detached)
		if err != nil {
			return nil, err
		}
		c.Set(detached, key, sol)
		return sol, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.(*solver.Solution), false, nil
	case <-ctx.Done():
		return nil, false, fmt.Errorf("waiting for solve: %w", ctx.Err())
	}
}

// Invalidate removes every cached solution.
func (c *SolveCache) Invalidate(ctx context.Context) (int64, error) {
	if !c.Enabled() {
		return 0, nil
	}
	var deleted int64
	err := c.protect(func() error {
		var err error
		deleted, err = c.backend.FlushByPattern(ctx, keyPrefix+"*")
		return err
	})
	if err != nil {
		return deleted, fmt.Errorf("invalidating solve cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return deleted, nil
}

// Stats returns the hit and miss counts since start.
func (c *SolveCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *SolveCache) protect(fn func() error) error {
	if c.breaker == nil {
		return fn()
	}
	return c.breaker.Execute(fn)
}

// IsFailure classifies backend errors for a circuit breaker: a missing key is
// an ordinary miss, not a fault.
func IsFailure(err error) bool {
	return err != nil && !pkgredis.IsNilError(err) && !errors.Is(err, context.Canceled)
}
