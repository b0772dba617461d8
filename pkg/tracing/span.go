// Package tracing times the phases of a request as a tree of spans carried
// through the context. A finished tree is written to slog, one record per
// span.
package tracing

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"
)

type contextKey struct{}

// Span is one timed phase. Children are the phases started under it.
type Span struct {
	Name    string
	TraceID string
	Start   time.Time

	mu       sync.Mutex
	duration time.Duration
	ended    bool
	attrs    map[string]any
	children []*Span
}

// Start opens a span. When ctx already carries one the new span becomes its
// child and inherits the trace ID; otherwise it is a root span for traceID.
func Start(ctx context.Context, name, traceID string) (context.Context, *Span) {
	span := &Span{
		Name:    name,
		TraceID: traceID,
		Start:   time.Now(),
		attrs:   make(map[string]any),
	}
	if parent := FromContext(ctx); parent != nil {
		span.TraceID = parent.TraceID
		parent.mu.Lock()
		parent.children = append(parent.children, span)
		parent.mu.Unlock()
	}
	return context.WithValue(ctx, contextKey{}, span), span
}

// FromContext returns the span carried by ctx, or nil.
func FromContext(ctx context.Context) *Span {
	span, _ := ctx.Value(contextKey{}).(*Span)
	return span
}

// End fixes the span's duration. Later calls are no-ops.
func (s *Span) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.ended = true
	s.duration = time.Since(s.Start)
}

// Duration is the elapsed time of an ended span, or the time so far.
func (s *Span) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return s.duration
	}
	return time.Since(s.Start)
}

func (s *Span) SetAttr(key string, value any) {
	s.mu.Lock()
	s.attrs[key] = value
	s.mu.Unlock()
}

func (s *Span) Attr(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.attrs[key]
	return v, ok
}

func (s *Span) Children() []*Span {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.children)
}

// Walk visits the span and its descendants depth first.
func (s *Span) Walk(fn func(span *Span, depth int)) {
	s.walk(fn, 0)
}

func (s *Span) walk(fn func(*Span, int), depth int) {
	fn(s, depth)
	for _, child := range s.Children() {
		child.walk(fn, depth+1)
	}
}

// Log writes the tree to log at debug level.
func (s *Span) Log(ctx context.Context, log *slog.Logger) {
	if !log.Enabled(ctx, slog.LevelDebug) {
		return
	}
	s.Walk(func(span *Span, depth int) {
		span.mu.Lock()
		attrs := maps.Clone(span.attrs)
		span.mu.Unlock()

		args := []any{
			"trace_id", span.TraceID,
			"span", span.Name,
			"depth", depth,
			"duration_us", span.Duration().Microseconds(),
		}
		for _, k := range slices.Sorted(maps.Keys(attrs)) {
			args = append(args, k, attrs[k])
		}
		log.DebugContext(ctx, "span", args...)
	})
}
