package port

// CacheMetrics receives cache telemetry keyed by cache name.
type CacheMetrics interface {
	IncHit(cache string)
	IncMiss(cache string)
	IncStaleDiscard(cache string)
	IncInvalidation(cache string)
}

// RefreshMetrics receives credential refresh outcomes.
type RefreshMetrics interface {
	ObserveRefresh(outcome string)
}
