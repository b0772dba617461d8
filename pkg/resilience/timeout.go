package resilience

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/errors"
)

// WithTimeout runs fn under a deadline and returns its value. Once the
// deadline passes the error wraps apperrors.ErrTimeout and fn's eventual
// result is dropped; fn keeps running until it notices ctx. When the parent
// context ends first its error is returned instead. A non-positive timeout
// calls fn directly.
func WithTimeout[T any](ctx context.Context, timeout time.Duration, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	deadline := fmt.Errorf("%w after %v", apperrors.ErrTimeout, timeout)
	tctx, cancel := context.WithTimeoutCause(ctx, timeout, deadline)
	defer cancel()

	type outcome struct {
		val T
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		val, err := fn(tctx)
		done <- outcome{val, err}
	}()

	var zero T
	select {
	case out := <-done:
		if out.err != nil && tctx.Err() != nil {
			return zero, fmt.Errorf("%s: %w", name, context.Cause(tctx))
		}
		return out.val, out.err
	case <-tctx.Done():
		return zero, fmt.Errorf("%s: %w", name, context.Cause(tctx))
	}
}
