package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRegisterOnFreshRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewUnregistered()
	m.Register(reg)

	m.SolvesTotal.WithLabelValues("found").Inc()
	m.SolvesTotal.WithLabelValues("found").Inc()
	m.SolvesTotal.WithLabelValues("empty").Inc()
	m.CacheHitsTotal.Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	values := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				key := mf.GetName()
				for _, lp := range metric.GetLabel() {
					key += "/" + lp.GetValue()
				}
				values[key] = c.GetValue()
			}
		}
	}
	if got := values["wordsearch_solves_total/found"]; got != 2 {
		t.Errorf("solves found = %v, want 2", got)
	}
	if got := values["wordsearch_solves_total/empty"]; got != 1 {
		t.Errorf("solves empty = %v, want 1", got)
	}
	if got := values["cache_hits_total"]; got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}
}

func TestRegisterTwicePanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewUnregistered().Register(reg)
	defer func() {
		if recover() == nil {
			t.Fatal("expected duplicate registration to panic")
		}
	}()
	NewUnregistered().Register(reg)
}
