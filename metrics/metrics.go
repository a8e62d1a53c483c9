// Package metrics defines the Prometheus collectors for question matching
// and the HTTP API, and exposes a handler for scraping.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "faqmatch"

// Metrics holds the Prometheus collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	AsksTotal           *prometheus.CounterVec
	MatchDuration       prometheus.Histogram
	TopScore            prometheus.Histogram
	KnowledgeBaseItems  prometheus.Gauge
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		AsksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "asks_total",
				Help:      "Total questions asked by outcome (answered, no_match, empty_knowledge_base).",
			},
			[]string{"outcome"},
		),
		MatchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "match_duration_seconds",
				Help:      "Time spent ranking the knowledge base against a question.",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			},
		),
		TopScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "top_score",
				Help:      "Cosine similarity of the best candidate per question.",
				Buckets:   []float64{0, 0.05, 0.1, 0.12, 0.2, 0.3, 0.5, 0.75, 1},
			},
		),
		KnowledgeBaseItems: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "knowledge_base_items",
				Help:      "Number of question/answer items seen by the last ask.",
			},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
	}

	collectors := []prometheus.Collector{
		m.AsksTotal,
		m.MatchDuration,
		m.TopScore,
		m.KnowledgeBaseItems,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// ObserveAsk counts one answered question.
func (m *Metrics) ObserveAsk(outcome string) {
	if m == nil {
		return
	}
	m.AsksTotal.WithLabelValues(outcome).Inc()
}

// ObserveMatch records a ranking pass and its best score.
func (m *Metrics) ObserveMatch(d time.Duration, topScore float64) {
	if m == nil {
		return
	}
	m.MatchDuration.Observe(d.Seconds())
	m.TopScore.Observe(topScore)
}

// SetKnowledgeBaseItems updates the knowledge base size gauge.
func (m *Metrics) SetKnowledgeBaseItems(n int) {
	if m == nil {
		return
	}
	m.KnowledgeBaseItems.Set(float64(n))
}

// ObserveHTTPRequest records one served request. path should be the route
// pattern, not the raw URL, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// Handler returns the Prometheus scrape HTTP handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
