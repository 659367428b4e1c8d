package telemetry

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Register adds collector to reg. When an equal collector is already
// registered it returns that one instead, so building the agent twice
// against one registry (tests, restarts of the composition root) is safe.
func Register[C prometheus.Collector](reg prometheus.Registerer, collector C) (C, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var already prometheus.AlreadyRegisteredError
	if !errors.As(err, &already) {
		return collector, fmt.Errorf("register collector: %w", err)
	}
	existing, ok := already.ExistingCollector.(C)
	if !ok {
		return collector, fmt.Errorf("registered collector has unexpected type %T", already.ExistingCollector)
	}
	return existing, nil
}
