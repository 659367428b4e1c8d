package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsCountPerCache(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics, err := NewMetrics(MetricsOptions{Registerer: registry})
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	metrics.IncHit("likes_preview")
	metrics.IncHit("likes_preview")
	metrics.IncMiss("comments")
	metrics.IncStaleDiscard("comments")
	metrics.IncInvalidation("follow_status")
	metrics.ObserveRefresh("renewed")

	if got := testutil.ToFloat64(metrics.Hits.WithLabelValues("likes_preview")); got != 2 {
		t.Fatalf("expected 2 hits, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.Misses.WithLabelValues("comments")); got != 1 {
		t.Fatalf("expected 1 miss, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.StaleDiscards.WithLabelValues("comments")); got != 1 {
		t.Fatalf("expected 1 stale discard, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.Invalidations.WithLabelValues("follow_status")); got != 1 {
		t.Fatalf("expected 1 invalidation, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.Refreshes.WithLabelValues("renewed")); got != 1 {
		t.Fatalf("expected 1 refresh, got %f", got)
	}
}

func TestMetricsReuseRegisteredCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	first, err := NewMetrics(MetricsOptions{Registerer: registry})
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	second, err := NewMetrics(MetricsOptions{Registerer: registry})
	if err != nil {
		t.Fatalf("second registration must reuse collectors: %v", err)
	}

	second.IncHit("comments")
	if got := testutil.ToFloat64(first.Hits.WithLabelValues("comments")); got != 1 {
		t.Fatalf("expected shared collector, got %f", got)
	}
}

func TestMetricsRejectForeignCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "social",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "conflicting",
	}))

	if _, err := NewMetrics(MetricsOptions{Registerer: registry}); err == nil {
		t.Fatalf("expected error for conflicting collector")
	}
}
