package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/kafka"
)

// Publisher is implemented by *kafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, events ...kafka.Event) error
}

// Collector buffers solve events and publishes them in batches, when the
// buffer reaches batchSize or every flushInterval. Failed batches are
// re-queued up to three batches' worth; beyond that the oldest are dropped.
type Collector struct {
	publisher     Publisher
	mu            sync.Mutex
	buffer        []kafka.Event
	batchSize     int
	flushInterval time.Duration
	kick          chan struct{}
	done          chan struct{}
	dropped       int
	logger        *slog.Logger
}

func NewCollector(publisher Publisher, batchSize int, flushInterval time.Duration) *Collector {
	if batchSize <= 0 {
		batchSize = 100
	}
	if flushInterval <= 0 {
		flushInterval = 5 * time.Second
	}
	return &Collector{
		publisher:     publisher,
		buffer:        make([]kafka.Event, 0, batchSize),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		kick:          make(chan struct{}, 1),
		done:          make(chan struct{}),
		logger:        slog.Default().With("component", "solve-collector"),
	}
}

// Start launches the flush loop. When ctx is done the loop makes a final
// flush and exits; Close waits for that.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		ticker := time.NewTicker(c.flushInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.flush(ctx)
			case <-c.kick:
				c.flush(ctx)
			case <-ctx.Done():
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				c.flush(flushCtx)
				cancel()
				return
			}
		}
	}()
	c.logger.Info("collector started", "batch_size", c.batchSize, "flush_interval", c.flushInterval)
}

// Track queues an event. It never blocks on Kafka.
func (c *Collector) Track(event SolveEvent) {
	c.mu.Lock()
	c.buffer = append(c.buffer, kafka.Event{Key: event.Fingerprint, Value: event})
	full := len(c.buffer) >= c.batchSize
	c.mu.Unlock()
	if full {
		select {
		case c.kick <- struct{}{}:
		default:
		}
	}
}

// Close waits for the flush loop to finish.
func (c *Collector) Close() {
	<-c.done
}

// Pending returns the number of buffered events.
func (c *Collector) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buffer)
}

// Dropped returns how many events were discarded after failed publishes.
func (c *Collector) Dropped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

func (c *Collector) flush(ctx context.Context) {
	c.mu.Lock()
	if len(c.buffer) == 0 {
		c.mu.Unlock()
		return
	}
	batch := c.buffer
	c.buffer = make([]kafka.Event, 0, c.batchSize)
	c.mu.Unlock()

	if err := c.publisher.Publish(ctx, batch...); err != nil {
		c.logger.Error("batch publish failed", "batch_size", len(batch), "error", err)
		c.mu.Lock()
		c.buffer = append(batch, c.buffer...)
		if limit := c.batchSize * 3; len(c.buffer) > limit {
			n := len(c.buffer) - limit
			c.buffer = c.buffer[n:]
			c.dropped += n
			c.logger.Warn("buffer overflow, events dropped", "dropped", n)
		}
		c.mu.Unlock()
		return
	}
	c.logger.Debug("batch published", "events", len(batch))
}
