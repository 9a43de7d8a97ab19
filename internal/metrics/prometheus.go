package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains the Prometheus metrics for the encoder
type Metrics struct {
	registry *prometheus.Registry

	// Encoder metrics
	Encodes          *prometheus.CounterVec
	EncodeDuration   prometheus.Histogram
	FrameBytes       prometheus.Histogram
	SamplesGenerated prometheus.Counter

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates the metrics on a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		Encodes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aprswav_encodes_total",
			Help: "Total number of encode requests by result",
		}, []string{"result"}),
		EncodeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "aprswav_encode_duration_seconds",
			Help:    "Time to build, modulate and write one transmission",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		FrameBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "aprswav_frame_bytes",
			Help:    "Size of wrapped transmissions in bytes",
			Buckets: prometheus.LinearBuckets(64, 32, 10),
		}),
		SamplesGenerated: factory.NewCounter(prometheus.CounterOpts{
			Name: "aprswav_samples_generated_total",
			Help: "Total number of audio samples written",
		}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aprswav_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aprswav_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
	}
}

// RecordEncode records the outcome of one encode-and-write call
func (m *Metrics) RecordEncode(err error, seconds float64, frameBytes, samples int) {
	if m == nil {
		return
	}
	if err != nil {
		m.Encodes.WithLabelValues("error").Inc()
		return
	}
	m.Encodes.WithLabelValues("success").Inc()
	m.EncodeDuration.Observe(seconds)
	m.FrameBytes.Observe(float64(frameBytes))
	m.SamplesGenerated.Add(float64(samples))
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(seconds)
}

// Registry returns the registry holding these metrics
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
