package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Lookup outcomes.
const (
	OutcomeFound          = "found"
	OutcomeNotFound       = "not_found"
	OutcomeEmpty          = "empty"
	OutcomeError          = "error"
	OutcomeUnknownDataset = "unknown_dataset"
)

var (
	// lookupsTotal counts lookups by kind (license, name, historical, legacy_*) and outcome.
	lookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recordlookup_lookups_total",
			Help: "Total lookup count by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// strictSearchTotal counts name lookups narrowed to exact matching.
	strictSearchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recordlookup_strict_searches_total",
			Help: "Total name lookups that were narrowed to exact matching",
		},
		[]string{"dataset"},
	)

	remoteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recordlookup_opendata_request_duration_seconds",
			Help:    "Latency of open-data API queries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "status"},
	)

	datasetUp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recordlookup_dataset_up",
			Help: "Whether the last background check of a dataset endpoint succeeded",
		},
		[]string{"dataset"},
	)
)

// RecordLookup records the outcome of a lookup.
func RecordLookup(kind, outcome string) {
	lookupsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordStrictSearch records a lookup narrowed to exact matching.
func RecordStrictSearch(dataset string) {
	strictSearchTotal.WithLabelValues(dataset).Inc()
}

// ObserveRemote records the latency of an open-data API call.
// status is the HTTP status code, or "error" when the call never completed.
func ObserveRemote(endpoint, status string, elapsed time.Duration) {
	remoteDuration.WithLabelValues(endpoint, status).Observe(elapsed.Seconds())
}

// SetDatasetUp records the result of a background dataset check.
func SetDatasetUp(dataset string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	datasetUp.WithLabelValues(dataset).Set(v)
}

// Handler returns the prometheus exposition handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
