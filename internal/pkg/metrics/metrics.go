package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Lookup outcomes recorded by the resolver.
const (
	OutcomeResolved  = "resolved"
	OutcomeNotFound  = "not_found"
	OutcomeError     = "error"
	OutcomeStale     = "stale"
	OutcomeCancelled = "cancelled"
)

var (
	LookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "token_resolver",
		Name:      "lookups_total",
		Help:      "Token lookups by outcome.",
	}, []string{"outcome"})

	IdentityChangesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "token_resolver",
		Name:      "identity_changes_total",
		Help:      "Number of chain ID changes seen by the resolver.",
	})

	RegistryRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "token_resolver",
		Name:      "registry_requests_total",
		Help:      "Registry requests by source and result.",
	}, []string{"source", "result"})

	LookupDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "token_resolver",
		Name:      "lookup_duration_seconds",
		Help:      "Time spent in a single resolution attempt.",
		Buckets:   prometheus.DefBuckets,
	})

	registerOnce sync.Once
)

// MustRegisterMetrics registers all collectors with the default registry. Safe to call more than once.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(LookupsTotal, IdentityChangesTotal, RegistryRequestsTotal, LookupDuration)
	})
}

// ObserveRegistry records the result of a registry request.
func ObserveRegistry(source string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	RegistryRequestsTotal.WithLabelValues(source, result).Inc()
}
