package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRegisterReusesEqualCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	opts := prometheus.CounterOpts{Name: "probe_total", Help: "probe"}

	first, err := Register(reg, prometheus.NewCounter(opts))
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	second, err := Register(reg, prometheus.NewCounter(opts))
	if err != nil {
		t.Fatalf("second Register returned error: %v", err)
	}
	if first != second {
		t.Fatalf("expected the registered counter to be returned")
	}
}

func TestRegisterRejectsConflictingDescriptor(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := Register(reg, prometheus.NewCounter(prometheus.CounterOpts{Name: "probe_total", Help: "probe"})); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if _, err := Register(reg, prometheus.NewCounter(prometheus.CounterOpts{Name: "probe_total", Help: "other"})); err == nil {
		t.Fatalf("expected conflicting help text to be rejected")
	}
}
