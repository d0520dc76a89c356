// Package metrics collects and exposes Prometheus metrics for healthd.
//
// WHY AN INTERFACE?
// Middleware and services record through Recorder, so tests pass Nop{} and
// never touch a registry. Collector is the Prometheus-backed implementation.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for recommendation generation.
const (
	OutcomeSuccess     = "success"
	OutcomeFailure     = "failure"
	OutcomeUnavailable = "unavailable"
)

// Recorder is what the HTTP layer and the services report to.
type Recorder interface {
	ObserveRequest(method, route string, status int, duration time.Duration)
	RecordRecommendation(outcome string, duration time.Duration)
	RecordRateLimited(route string)
}

// Collector records into Prometheus metrics.
type Collector struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	recommendations *prometheus.CounterVec
	generation      prometheus.Histogram
	rateLimited     *prometheus.CounterVec
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "healthd_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "healthd_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "healthd_recommendations_total",
			Help: "Recommendation generations by outcome.",
		}, []string{"outcome"}),
		generation: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "healthd_recommendation_generation_seconds",
			Help:    "Time spent waiting for the model.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "healthd_rate_limited_total",
			Help: "Requests rejected by the rate limiter, by route.",
		}, []string{"route"}),
	}

	reg.MustRegister(
		c.requests,
		c.requestDuration,
		c.recommendations,
		c.generation,
		c.rateLimited,
	)

	return c
}

// ObserveRequest counts one finished HTTP request.
// route is the chi route pattern, so user ids never become label values.
func (c *Collector) ObserveRequest(method, route string, status int, duration time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordRecommendation counts one generation attempt.
func (c *Collector) RecordRecommendation(outcome string, duration time.Duration) {
	c.recommendations.WithLabelValues(outcome).Inc()
	if outcome != OutcomeUnavailable {
		c.generation.Observe(duration.Seconds())
	}
}

// RecordRateLimited counts one rejected request.
func (c *Collector) RecordRateLimited(route string) {
	c.rateLimited.WithLabelValues(route).Inc()
}

// Handler serves the metrics gathered by reg.
func Handler(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) ObserveRequest(string, string, int, time.Duration) {}
func (Nop) RecordRecommendation(string, time.Duration)        {}
func (Nop) RecordRateLimited(string)                           {}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)
