// Package metrics defines the Prometheus metrics of the studio.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeSuccess     = "success"
	OutcomeRateLimited = "rate_limited"
	OutcomeFailed      = "failed"
	OutcomeSkipped     = "skipped"
)

// Metrics contains all Prometheus metrics of the studio.
type Metrics struct {
	Registry *prometheus.Registry

	// Synthesis
	SynthesisAttempts *prometheus.CounterVec
	SynthesisDuration prometheus.Histogram
	ClipSeconds       prometheus.Histogram
	InFlight          prometheus.Gauge

	// Merge
	Merges       *prometheus.CounterVec
	MergedFrames prometheus.Counter
	MergeClips   prometheus.Histogram

	// HTTP API
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates the metrics on a fresh registry, together with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		SynthesisAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "supernova_synthesis_attempts_total",
			Help: "Paragraph narration attempts by outcome",
		}, []string{"outcome"}),
		SynthesisDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "supernova_synthesis_duration_seconds",
			Help:    "Time spent narrating one paragraph",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
		}),
		ClipSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "supernova_clip_seconds",
			Help:    "Playing time of narrated clips",
			Buckets: prometheus.LinearBuckets(5, 10, 8),
		}),
		InFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "supernova_synthesis_in_flight",
			Help: "Paragraphs currently being narrated",
		}),

		Merges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "supernova_merges_total",
			Help: "Full-book merges by outcome",
		}, []string{"outcome"}),
		MergedFrames: f.NewCounter(prometheus.CounterOpts{
			Name: "supernova_merged_frames_total",
			Help: "Sample frames written to merged recordings",
		}),
		MergeClips: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "supernova_merge_clips",
			Help:    "Clips joined per merge",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "supernova_http_requests_total",
			Help: "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "supernova_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}
