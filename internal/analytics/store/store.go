// Package store persists solve runs and aggregate snapshots in PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/wordsearch/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/resilience"
)

// Schema creates the tables the store uses.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS solve_runs (
		id          BIGSERIAL PRIMARY KEY,
		request_id  TEXT UNIQUE,
		outcome     TEXT NOT NULL,
		grid_size   INTEGER NOT NULL,
		min_length  INTEGER NOT NULL,
		fingerprint TEXT NOT NULL,
		words_found INTEGER NOT NULL,
		expanded    INTEGER NOT NULL,
		pruned      INTEGER NOT NULL,
		words       TEXT NOT NULL DEFAULT '',
		cache_hit   BOOLEAN NOT NULL,
		latency_ms  BIGINT NOT NULL,
		error       TEXT NOT NULL DEFAULT '',
		solved_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS solve_runs_solved_at_idx ON solve_runs (solved_at)`,
	`CREATE TABLE IF NOT EXISTS analytics_snapshots (
		id          BIGSERIAL PRIMARY KEY,
		data        JSONB NOT NULL,
		captured_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

type Store struct {
	db     *postgres.Client
	retry  resilience.RetryConfig
	logger *slog.Logger
}

func New(db *postgres.Client) *Store {
	return &Store{
		db: db,
		retry: resilience.RetryConfig{
			MaxAttempts:  4,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     5 * time.Second,
			Retryable:    Retryable,
		},
		logger: slog.Default().With("component", "analytics-store"),
	}
}

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	return s.db.Migrate(ctx, Schema...)
}

// InsertRun stores one solve event. A request id already stored is ignored,
// so redelivered events are harmless. Transient failures are retried.
func (s *Store) InsertRun(ctx context.Context, e analytics.SolveEvent) error {
	var requestID sql.NullString
	if e.RequestID != "" {
		requestID = sql.NullString{String: e.RequestID, Valid: true}
	}
	solvedAt := e.Timestamp
	if solvedAt.IsZero() {
		solvedAt = time.Now()
	}
	return resilience.Retry(ctx, "insert solve run", s.retry, func(ctx context.Context) error {
		_, err := s.db.DB.ExecContext(ctx,
			`INSERT INTO solve_runs
				(request_id, outcome, grid_size, min_length, fingerprint, words_found,
				 expanded, pruned, words, cache_hit, latency_ms, error, solved_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			 ON CONFLICT (request_id) DO NOTHING`,
			requestID, string(e.Outcome), e.GridSize, e.MinLength, e.Fingerprint, e.WordsFound,
			e.Expanded, e.Pruned, strings.Join(e.Words, " "), e.CacheHit, e.LatencyMs, e.Error, solvedAt.UTC(),
		)
		return err
	})
}

// SaveSnapshot persists an aggregate snapshot.
func (s *Store) SaveSnapshot(ctx context.Context, stats analytics.AggregatedStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshaling stats: %w", err)
	}
	err = resilience.Retry(ctx, "save snapshot", s.retry, func(ctx context.Context) error {
		_, err := s.db.DB.ExecContext(ctx,
			`INSERT INTO analytics_snapshots (data, captured_at) VALUES ($1, $2)`,
			data, stats.CapturedAt,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("saving analytics snapshot: %w", err)
	}
	s.logger.Info("snapshot saved", "total_solves", stats.TotalSolves)
	return nil
}

// LatestSnapshot returns the most recent snapshot, or nil when none exist.
func (s *Store) LatestSnapshot(ctx context.Context) (*analytics.AggregatedStats, error) {
	snaps, err := s.ListSnapshots(ctx, 1)
	if err != nil || len(snaps) == 0 {
		return nil, err
	}
	return &snaps[0], nil
}

// ListSnapshots returns the last limit snapshots, newest first. Rows that no
// longer decode are skipped.
func (s *Store) ListSnapshots(ctx context.Context, limit int) ([]analytics.AggregatedStats, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT data FROM analytics_snapshots ORDER BY captured_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []analytics.AggregatedStats
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		var stats analytics.AggregatedStats
		if err := json.Unmarshal(data, &stats); err != nil {
			s.logger.Warn("skipping corrupt snapshot", "error", err)
			continue
		}
		snapshots = append(snapshots, stats)
	}
	return snapshots, rows.Err()
}

// RunPeriodicSave snapshots agg every interval until ctx is done, then saves
// one final snapshot.
func (s *Store) RunPeriodicSave(ctx context.Context, agg *analytics.Aggregator, interval time.Duration) {
	s.logger.Info("periodic snapshot started", "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.SaveSnapshot(ctx, agg.Stats()); err != nil {
				s.logger.Error("periodic snapshot failed", "error", err)
			}
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.SaveSnapshot(shutdownCtx, agg.Stats()); err != nil {
				s.logger.Error("final snapshot failed", "error", err)
			}
			return
		}
	}
}

// Retryable reports whether a database error may succeed on a later attempt.
// Data and constraint errors (SQLSTATE classes 22 and 23) and syntax or
// permission errors (class 42) never will.
func Retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "22", "23", "42":
			return false
		}
	}
	return true
}
