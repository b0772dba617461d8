// Command server runs the word-search HTTP API.
//
// It loads the dictionary once at startup and solves puzzles posted to
// POST /api/v1/solve. Redis caching and Kafka solve events are enabled from
// config; without them the server still solves, just uncached and untracked.
//
// Usage:
//
//	go run ./cmd/server [-config configs/development.yaml]
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
	"time"

	"github.com/joho/godotenv"

	"github.com/Adithya-Monish-Kumar-K/wordsearch/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/internal/api"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/internal/cache"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/internal/dictionary"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/internal/loader"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/internal/ratelimit"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/resilience"
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
	slog.Info("starting word search server", "port", cfg.Server.Port)

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

	limits := loader.Limits{MaxGridSize: cfg.Search.MaxGridSize, MaxWords: cfg.Search.MaxWords}
	words, err := loader.LoadWordsFile(cfg.Input.WordsPath, limits)
	if err != nil {
		slog.Error("failed to load dictionary", "error", err)
		os.Exit(1)
	}
	dict := dictionary.New(words)
	slog.Info("dictionary loaded",
		"path", cfg.Input.WordsPath,
		"words", dict.Len(),
		"fingerprint", dict.Fingerprint(),
	)

	var redisClient *pkgredis.Client
	var solveCache *cache.SolveCache
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, solve caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			breaker := resilience.NewCircuitBreaker("redis", resilience.CircuitBreakerConfig{
				FailureThreshold: 5,
				ResetTimeout:     30 * time.Second,
				IsFailure:        cache.IsFailure,
				OnStateChange: func(name string, _, to resilience.State) {
					m.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
				},
			})
			solveCache = cache.New(redisClient, cfg.Redis.CacheTTL, breaker)
			slog.Info("solve cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	var tracker api.Tracker
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.SolveEvents)
		defer producer.Close()
		collector := analytics.NewCollector(producer, 100, 2*time.Second)
		collector.Start(ctx)
		defer collector.Close()
		tracker = collector
		slog.Info("solve events enabled", "topic", producer.Topic())
	}

	limiter := ratelimit.New(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	go limiter.Run(ctx, time.Minute)

	checker := health.NewChecker()
	checker.Register("dictionary", func(ctx context.Context) health.ComponentHealth {
		if dict.Len() == 0 {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "dictionary is empty"}
		}
		return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d words", dict.Len())}
	})
	if redisClient != nil {
		checker.Register("redis", health.PingCheck(redisClient.Ping, health.StatusDegraded))
	}

	h := api.New(dict, solveCache, tracker, m, api.Options{
		MinLength:    cfg.Search.MinWordLength,
		Workers:      cfg.Search.Workers,
		MaxGridSize:  cfg.Search.MaxGridSize,
		MaxWords:     cfg.Search.MaxWords,
		SolveTimeout: cfg.Search.SolveTimeout,
	})
	router := api.NewRouter(h, api.RouterConfig{
		Metrics:        m,
		Limiter:        limiter,
		Checker:        checker,
		RequestTimeout: cfg.Server.WriteTimeout,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
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

	slog.Info("word search server listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("word search server stopped")
}
