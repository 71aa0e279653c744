package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelpress_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelpress_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelpress_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Pipeline metrics
var (
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelpress_jobs_total",
			Help: "Conversion jobs by terminal outcome",
		},
		[]string{"outcome"}, // "ready" or an error kind
	)

	JobsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelpress_jobs_in_flight",
			Help: "Conversion jobs currently running",
		},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelpress_stage_duration_seconds",
			Help:    "Duration of pipeline stages",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"stage"}, // "acquire", "transcode"
	)

	OutputsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelpress_outputs_expired_total",
			Help: "Output artifacts deleted by the expiry sweep",
		},
	)
)
