package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func up(context.Context) error { return nil }

func down(context.Context) error { return errors.New("connection refused") }

func TestRunTakesWorstStatus(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]Check
		want   Status
	}{
		{"no checks", nil, StatusUp},
		{"all up", map[string]Check{"dictionary": PingCheck(up, StatusDown)}, StatusUp},
		{"degraded cache", map[string]Check{
			"dictionary": PingCheck(up, StatusDown),
			"redis":      PingCheck(down, StatusDegraded),
		}, StatusDegraded},
		{"down wins", map[string]Check{
			"postgres": PingCheck(down, StatusDown),
			"redis":    PingCheck(down, StatusDegraded),
		}, StatusDown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewChecker()
			for name, check := range tc.checks {
				c.Register(name, check)
			}
			report := c.Run(context.Background())
			if report.Status != tc.want {
				t.Errorf("status = %s, want %s", report.Status, tc.want)
			}
			if len(report.Components) != len(tc.checks) {
				t.Errorf("components = %d, want %d", len(report.Components), len(tc.checks))
			}
		})
	}
}

func TestReadyHandler(t *testing.T) {
	c := NewChecker()
	c.Register("redis", PingCheck(down, StatusDegraded))

	rec := httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("degraded service status = %d, want 200", rec.Code)
	}
	var report Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.Components["redis"].Message != "connection refused" {
		t.Errorf("unexpected component %+v", report.Components["redis"])
	}

	c.Register("postgres", PingCheck(down, StatusDown))
	rec = httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("down service status = %d, want 503", rec.Code)
	}
}

func TestLiveHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewChecker().LiveHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
