package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	SitesInQueue         prometheus.Gauge
	ClassificationsTotal *prometheus.CounterVec
	ClassifyDuration     prometheus.Histogram
	CMPDetections        *prometheus.CounterVec
	ComparableActions    prometheus.Counter
)

func Init() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	SitesInQueue = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sites_in_queue",
			Help: "Current number of websites in the classification queue.",
		},
	)

	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifications_total",
			Help: "Total number of website classification attempts.",
		},
		[]string{"status", "reason"}, // status: success, failure
	)

	ClassifyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "classification_duration_seconds",
			Help:    "Duration of full website classification runs.",
			Buckets: []float64{30, 60, 120, 300, 600, 1200, 2400},
		},
	)

	CMPDetections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cmp_detections_total",
			Help: "Consent platforms detected per website visit.",
		},
		[]string{"cmp"},
	)

	ComparableActions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "comparable_actions_total",
			Help: "Paired actions that produced a similarity score.",
		},
	)
}
