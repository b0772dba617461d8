package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Search.MinWordLength != 4 {
		t.Errorf("MinWordLength = %d, want 4", cfg.Search.MinWordLength)
	}
	if cfg.Input.WordsPath != "words.txt" || cfg.Input.PuzzlePath != "puzzle.txt" {
		t.Errorf("unexpected input paths %+v", cfg.Input)
	}
}

func TestLoadYAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlDoc := `
search:
  minWordLength: 3
  workers: 2
  solveTimeout: 2s
redis:
  enabled: true
  cacheTTL: 90s
kafka:
  brokers: ["k1:9092"]
`
	if err := os.WriteFile(path, []byte(yamlDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WS_SEARCH_WORKERS", "8")
	t.Setenv("WS_KAFKA_BROKERS", "a:1,b:2")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Search.MinWordLength != 3 {
		t.Errorf("MinWordLength = %d, want 3", cfg.Search.MinWordLength)
	}
	if cfg.Search.Workers != 8 {
		t.Errorf("Workers = %d, want env override 8", cfg.Search.Workers)
	}
	if cfg.Search.SolveTimeout != 2*time.Second {
		t.Errorf("SolveTimeout = %v, want 2s", cfg.Search.SolveTimeout)
	}
	if !cfg.Redis.Enabled || cfg.Redis.CacheTTL != 90*time.Second {
		t.Errorf("unexpected redis config %+v", cfg.Redis)
	}
	if strings.Join(cfg.Kafka.Brokers, ",") != "a:1,b:2" {
		t.Errorf("Brokers = %v", cfg.Kafka.Brokers)
	}
	// untouched sections keep their defaults
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("WS_SEARCH_MIN_WORD_LENGTH", "0")
	if _, err := Load(""); err == nil {
		t.Fatal("expected validation error for minWordLength 0")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	want := "host=db port=5432 user=u password=p dbname=d sslmode=disable"
	if got := p.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
