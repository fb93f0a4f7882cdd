// Package metrics holds the Prometheus collectors shared by the search
// engine and its external clients.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	externalCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cognate_external_calls_total",
			Help: "Total number of calls to external services",
		},
		[]string{"service", "status"},
	)

	externalCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cognate_external_call_duration_seconds",
			Help:    "External call duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"service"},
	)

	candidatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cognate_candidates_total",
			Help: "Generated candidates by outcome",
		},
		[]string{"outcome"},
	)

	cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cognate_translation_cache_lookups_total",
			Help: "Translation cache lookups by result",
		},
		[]string{"cache", "result"},
	)

	bestScore = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cognate_beam_best_score",
			Help: "Total score of the best state in the latest beam",
		},
	)
)

// Candidate outcomes.
const (
	OutcomeKept     = "kept"
	OutcomeEmpty    = "empty"
	OutcomeNoLetter = "no_letters"
	OutcomeNoSeed   = "missing_seed_word"
	OutcomeFailed   = "failed"
)

// ObserveCall records one external call. A nil err counts as "ok".
func ObserveCall(service string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	externalCallsTotal.WithLabelValues(service, status).Inc()
	externalCallDuration.WithLabelValues(service).Observe(time.Since(start).Seconds())
}

// Candidate counts a generated candidate by outcome.
func Candidate(outcome string) {
	candidatesTotal.WithLabelValues(outcome).Inc()
}

// CacheLookup records a translation cache hit or miss.
func CacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookupsTotal.WithLabelValues(cache, result).Inc()
}

// BestScore publishes the best total of the current beam.
func BestScore(total float64) {
	bestScore.Set(total)
}
