package analytics

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/metrics"
)

// RunSink persists individual solve events.
type RunSink interface {
	InsertRun(ctx context.Context, e SolveEvent) error
}

// Recorder consumes solve events: each one is persisted to the sink (when
// there is one) and then folded into the aggregator.
type Recorder struct {
	agg     *Aggregator
	sink    RunSink
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewRecorder creates a Recorder. sink and m may be nil.
func NewRecorder(agg *Aggregator, sink RunSink, m *metrics.Metrics) *Recorder {
	return &Recorder{
		agg:     agg,
		sink:    sink,
		metrics: m,
		logger:  slog.Default().With("component", "solve-recorder"),
	}
}

// Handle is a kafka.MessageHandler. A sink failure is returned so the
// message is redelivered; undecodable messages are reported as poison.
func (r *Recorder) Handle(ctx context.Context, _ []byte, value []byte) error {
	event, err := kafka.DecodeJSON[SolveEvent](value)
	if err != nil {
		r.count("poison")
		return err
	}
	if r.sink != nil {
		if err := r.sink.InsertRun(ctx, event); err != nil {
			r.count("error")
			return fmt.Errorf("recording solve %s: %w", event.RequestID, err)
		}
	}
	if !r.agg.Record(event) {
		r.count("duplicate")
		return nil
	}
	r.count("recorded")
	r.logger.Debug("solve recorded",
		"request_id", event.RequestID,
		"outcome", event.Outcome,
		"words_found", event.WordsFound,
	)
	return nil
}

func (r *Recorder) count(status string) {
	if r.metrics != nil {
		r.metrics.EventsRecordedTotal.WithLabelValues(status).Inc()
	}
}
