// Package metrics holds the process-wide Prometheus counters for card entry
// validation and the BIN data service. Labels are bounded enums only.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	LookupSuccess = "success"
	LookupError   = "error"

	QueryFound    = "found"
	QueryNotFound = "not_found"
	QueryInvalid  = "invalid"
)

var (
	validationResultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cardbin_validation_results_total",
		Help: "Validation results delivered to observers, by source",
	}, []string{"source"})
	staleResultsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cardbin_stale_results_total",
		Help: "Results dropped because their generation was no longer current",
	})
	remoteLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cardbin_remote_lookups_total",
		Help: "Upstream BIN lookups, by outcome",
	}, []string{"outcome"})
	binCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cardbin_bin_cache_hits_total",
		Help: "BIN lookups answered from the session cache",
	})
	binQueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cardbin_bindb_queries_total",
		Help: "BIN data service queries, by result",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(validationResultsTotal, staleResultsTotal, remoteLookupsTotal, binCacheHitsTotal, binQueriesTotal)
}

func ObserveResult(source string) {
	validationResultsTotal.WithLabelValues(source).Inc()
}

func ObserveStale() {
	staleResultsTotal.Inc()
}

func ObserveLookup(outcome string) {
	remoteLookupsTotal.WithLabelValues(outcome).Inc()
}

func ObserveCacheHit() {
	binCacheHitsTotal.Inc()
}

func ObserveQuery(result string) {
	binQueriesTotal.WithLabelValues(result).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
