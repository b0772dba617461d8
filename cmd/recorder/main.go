// Command recorder consumes solve events from Kafka, persists every run to
// PostgreSQL, keeps running aggregates in memory, and serves them at
// GET /api/v1/analytics. Aggregates are snapshotted to PostgreSQL
// periodically and on shutdown.
//
// Usage:
//
//	go run ./cmd/recorder [-config configs/development.yaml]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/Adithya-Monish-Kumar-K/wordsearch/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/internal/analytics/store"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting solve recorder", "port", cfg.Recorder.Port, "topic", cfg.Kafka.Topics.SolveEvents)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Port); err != nil {
				slog.Error("metrics endpoint failed", "error", err)
			}
		}()
	}

	checker := health.NewChecker()
	aggregator := analytics.NewAggregator()

	var runStore *store.Store
	snapshotDone := make(chan struct{})
	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Warn("postgres unavailable, runs will not be persisted", "error", err)
	} else {
		defer db.Close()
		runStore = store.New(db)
		if err := runStore.Migrate(ctx); err != nil {
			slog.Error("failed to migrate schema", "error", err)
			os.Exit(1)
		}
		checker.Register("postgres", health.PingCheck(db.Ping, health.StatusDown))
		go func() {
			defer close(snapshotDone)
			runStore.RunPeriodicSave(ctx, aggregator, cfg.Recorder.SnapshotInterval)
		}()
	}
	if runStore == nil {
		close(snapshotDone)
	}

	// A nil *store.Store must not become a non-nil interface.
	var sink analytics.RunSink
	var snapshots analytics.SnapshotLister
	if runStore != nil {
		sink, snapshots = runStore, runStore
	}

	recorder := analytics.NewRecorder(aggregator, sink, m)
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.SolveEvents, recorder.Handle)
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := consumer.Start(ctx); err != nil {
			slog.Error("consumer error", "error", err)
		}
	}()
	checker.Register("kafka", func(ctx context.Context) health.ComponentHealth {
		select {
		case <-consumerDone:
			return health.ComponentHealth{Status: health.StatusDown, Message: "consumer stopped"}
		default:
			return health.ComponentHealth{Status: health.StatusUp, Message: "consumer active"}
		}
	})

	handler := analytics.NewHandler(aggregator, snapshots)
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestContext)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics(m))
	r.Get("/api/v1/analytics", handler.Stats)
	r.Get("/api/v1/analytics/snapshots", handler.Snapshots)
	r.Get("/health/live", checker.LiveHandler())
	r.Get("/health/ready", checker.ReadyHandler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Recorder.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("recorder listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	<-consumerDone
	<-snapshotDone
	if err := consumer.Close(); err != nil {
		slog.Warn("closing consumer", "error", err)
	}
	slog.Info("solve recorder stopped")
}
