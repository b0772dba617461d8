// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Server, Input, Search, Redis, Kafka, Postgres, etc.).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Input     InputConfig     `yaml:"input"`
	Search    SearchConfig    `yaml:"search"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Recorder  RecorderConfig  `yaml:"recorder"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// InputConfig names the word list and puzzle files.
type InputConfig struct {
	WordsPath  string `yaml:"wordsPath"`
	PuzzlePath string `yaml:"puzzlePath"`
}

// SearchConfig controls the solver and the limits on submitted puzzles.
type SearchConfig struct {
	MinWordLength int           `yaml:"minWordLength"`
	Workers       int           `yaml:"workers"`
	MaxGridSize   int           `yaml:"maxGridSize"`
	MaxWords      int           `yaml:"maxWords"`
	SolveTimeout  time.Duration `yaml:"solveTimeout"`
}

// RedisConfig holds Redis connection and caching parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Enabled       bool        `yaml:"enabled"`
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	SolveEvents string `yaml:"solveEvents"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// RecorderConfig controls the analytics recorder service.
type RecorderConfig struct {
	Port             int           `yaml:"port"`
	SnapshotInterval time.Duration `yaml:"snapshotInterval"`
}

// RateLimitConfig bounds solve requests per client IP.
type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided), applies environment-variable
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the solver cannot run with.
func (c *Config) Validate() error {
	if c.Search.MinWordLength < 1 {
		return fmt.Errorf("search.minWordLength must be at least 1, got %d", c.Search.MinWordLength)
	}
	if c.Search.Workers < 1 {
		return fmt.Errorf("search.workers must be at least 1, got %d", c.Search.Workers)
	}
	if c.Search.MaxGridSize < 1 {
		return fmt.Errorf("search.maxGridSize must be at least 1, got %d", c.Search.MaxGridSize)
	}
	if c.Recorder.SnapshotInterval <= 0 {
		return fmt.Errorf("recorder.snapshotInterval must be positive, got %v", c.Recorder.SnapshotInterval)
	}
	if c.RateLimit.Requests > 0 && c.RateLimit.Window <= 0 {
		return fmt.Errorf("rateLimit.window must be positive when rateLimit.requests is set")
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Input: InputConfig{
			WordsPath:  "words.txt",
			PuzzlePath: "puzzle.txt",
		},
		Search: SearchConfig{
			MinWordLength: 4,
			Workers:       4,
			MaxGridSize:   200,
			MaxWords:      500000,
			SolveTimeout:  10 * time.Second,
		},
		Redis: RedisConfig{
			Enabled:  false,
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: 10 * time.Minute,
		},
		Kafka: KafkaConfig{
			Enabled:       false,
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "wordsearch-recorder",
			Topics: KafkaTopics{
				SolveEvents: "wordsearch.solve-events",
			},
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "wordsearch",
			User:            "wordsearch",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Recorder: RecorderConfig{
			Port:             8081,
			SnapshotInterval: time.Minute,
		},
		RateLimit: RateLimitConfig{
			Requests: 60,
			Window:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads WS_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	setInt("WS_SERVER_PORT", &cfg.Server.Port)
	setString("WS_INPUT_WORDS_PATH", &cfg.Input.WordsPath)
	setString("WS_INPUT_PUZZLE_PATH", &cfg.Input.PuzzlePath)
	setInt("WS_SEARCH_MIN_WORD_LENGTH", &cfg.Search.MinWordLength)
	setInt("WS_SEARCH_WORKERS", &cfg.Search.Workers)
	setInt("WS_SEARCH_MAX_GRID_SIZE", &cfg.Search.MaxGridSize)
	setDuration("WS_SEARCH_SOLVE_TIMEOUT", &cfg.Search.SolveTimeout)
	setBool("WS_REDIS_ENABLED", &cfg.Redis.Enabled)
	setString("WS_REDIS_ADDR", &cfg.Redis.Addr)
	setString("WS_REDIS_PASSWORD", &cfg.Redis.Password)
	setDuration("WS_REDIS_CACHE_TTL", &cfg.Redis.CacheTTL)
	setBool("WS_KAFKA_ENABLED", &cfg.Kafka.Enabled)
	if v := os.Getenv("WS_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	setString("WS_KAFKA_TOPIC_SOLVE_EVENTS", &cfg.Kafka.Topics.SolveEvents)
	setString("WS_POSTGRES_HOST", &cfg.Postgres.Host)
	setInt("WS_POSTGRES_PORT", &cfg.Postgres.Port)
	setString("WS_POSTGRES_DATABASE", &cfg.Postgres.Database)
	setString("WS_POSTGRES_USER", &cfg.Postgres.User)
	setString("WS_POSTGRES_PASSWORD", &cfg.Postgres.Password)
	setString("WS_POSTGRES_SSLMODE", &cfg.Postgres.SSLMode)
	setInt("WS_RECORDER_PORT", &cfg.Recorder.Port)
	setInt("WS_RATE_LIMIT_REQUESTS", &cfg.RateLimit.Requests)
	setString("WS_LOGGING_LEVEL", &cfg.Logging.Level)
	setString("WS_LOGGING_FORMAT", &cfg.Logging.Format)
	setBool("WS_METRICS_ENABLED", &cfg.Metrics.Enabled)
	setInt("WS_METRICS_PORT", &cfg.Metrics.Port)
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
