package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/port"
)

// MetricsOptions configures the cache and refresh collectors.
type MetricsOptions struct {
	Registerer prometheus.Registerer
	Namespace  string
}

// Metrics implements port.CacheMetrics and port.RefreshMetrics on Prometheus.
type Metrics struct {
	Hits          *prometheus.CounterVec
	Misses        *prometheus.CounterVec
	StaleDiscards *prometheus.CounterVec
	Invalidations *prometheus.CounterVec
	Refreshes     *prometheus.CounterVec
}

var (
	_ port.CacheMetrics   = (*Metrics)(nil)
	_ port.RefreshMetrics = (*Metrics)(nil)
)

// NewMetrics registers the collectors, reusing any already registered under
// the same name.
func NewMetrics(opts MetricsOptions) (*Metrics, error) {
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "social"
	}

	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	cacheCounter := func(name, help string) (*prometheus.CounterVec, error) {
		return registerCounterVec(reg, prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      name,
			Help:      help,
		}, "cache")
	}

	m := &Metrics{}
	var err error
	if m.Hits, err = cacheCounter("hits_total", "Fresh cache lookups partitioned by cache."); err != nil {
		return nil, err
	}
	if m.Misses, err = cacheCounter("misses_total", "Absent or expired cache lookups partitioned by cache."); err != nil {
		return nil, err
	}
	if m.StaleDiscards, err = cacheCounter("stale_discards_total", "Responses dropped because the entry was invalidated while in flight."); err != nil {
		return nil, err
	}
	if m.Invalidations, err = cacheCounter("invalidations_total", "Entry invalidations partitioned by cache."); err != nil {
		return nil, err
	}

	m.Refreshes, err = registerCounterVec(reg, prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "credential",
		Name:      "refresh_total",
		Help:      "Credential refresh attempts partitioned by outcome.",
	}, "outcome")
	if err != nil {
		return nil, err
	}

	return m, nil
}

func registerCounterVec(reg prometheus.Registerer, opts prometheus.CounterOpts, label string) (*prometheus.CounterVec, error) {
	counter, err := Register(reg, prometheus.NewCounterVec(opts, []string{label}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opts.Name, err)
	}
	return counter, nil
}

func (m *Metrics) IncHit(cache string) { m.Hits.WithLabelValues(cache).Inc() }

func (m *Metrics) IncMiss(cache string) { m.Misses.WithLabelValues(cache).Inc() }

func (m *Metrics) IncStaleDiscard(cache string) { m.StaleDiscards.WithLabelValues(cache).Inc() }

func (m *Metrics) IncInvalidation(cache string) { m.Invalidations.WithLabelValues(cache).Inc() }

// ObserveRefresh counts one refresh attempt.
func (m *Metrics) ObserveRefresh(outcome string) { m.Refreshes.WithLabelValues(outcome).Inc() }
