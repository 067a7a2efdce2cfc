// Package metrics defines the Prometheus metrics exposed on /metrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "manifestacao"

var (
	// HTTP metrics, recorded by the server middleware
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// ManifestationsTotal counts processed manifestations by operation and outcome.
	// outcome is "success" or the nfe error code of the failing step.
	ManifestationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manifestations_total",
			Help:      "Total number of manifestation requests by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	SefazRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sefaz_request_duration_seconds",
			Help:      "Duration of SEFAZ event submissions, retries included",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"uf", "environment"},
	)

	// SefazEventStatusTotal counts the cStat returned for each event
	SefazEventStatusTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sefaz_event_status_total",
			Help:      "Total number of SEFAZ event responses by uf and cStat",
		},
		[]string{"uf", "cstat"},
	)
)

var registerOnce sync.Once

// Register registers all metrics with the default Prometheus registerer.
// Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(HTTPRequestsTotal)
		prometheus.MustRegister(HTTPRequestDuration)
		prometheus.MustRegister(ManifestationsTotal)
		prometheus.MustRegister(SefazRequestDuration)
		prometheus.MustRegister(SefazEventStatusTotal)
	})
}
