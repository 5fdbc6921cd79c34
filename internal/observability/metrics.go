package observability

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "codeai"

// Metrics holds the codeai Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	NormalizeTotal    *prometheus.CounterVec
	NormalizeDuration *prometheus.HistogramVec
	InputBytes        prometheus.Histogram
	FormatTotal       prometheus.Counter
	PromptTotal       *prometheus.CounterVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	RateLimitedTotal    prometheus.Counter
}

// NewMetrics registers the collectors on a fresh registry together with the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		NormalizeTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "normalize_total",
			Help:      "Normalized responses by operation and producing stage",
		}, []string{"operation", "source"}),
		NormalizeDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "normalize_duration_seconds",
			Help:      "Time spent normalizing one response",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"operation"}),
		InputBytes: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "input_bytes",
			Help:      "Size of raw responses submitted for normalization",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		}),
		FormatTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "format_total",
			Help:      "Documents rendered as paragraphs",
		}),
		PromptTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prompt_total",
			Help:      "Prompts built by kind",
		}, []string{"kind"}),

		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"method", "path"}),
		RateLimitedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the ingress rate limiter",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordNormalize records one normalize or segment call.
func (m *Metrics) RecordNormalize(operation, source string, inputLen int, duration time.Duration) {
	m.NormalizeTotal.WithLabelValues(operation, source).Inc()
	m.NormalizeDuration.WithLabelValues(operation).Observe(duration.Seconds())
	m.InputBytes.Observe(float64(inputLen))
}

// RecordFormat records one formatted document.
func (m *Metrics) RecordFormat() {
	m.FormatTotal.Inc()
}

// RecordPrompt records one prompt built for kind.
func (m *Metrics) RecordPrompt(kind string) {
	m.PromptTotal.WithLabelValues(kind).Inc()
}

// RecordHTTPRequest records a served request. path should be the route
// pattern, not the raw URL, to keep label cardinality bounded.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordRateLimited records a request rejected by the limiter.
func (m *Metrics) RecordRateLimited() {
	m.RateLimitedTotal.Inc()
}

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Default returns the process-wide metrics instance.
func Default() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = NewMetrics()
	})
	return globalMetrics
}
