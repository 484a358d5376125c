package observability

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce        sync.Once
	playRequestsTotal   *prometheus.CounterVec
	playLatencySeconds  *prometheus.HistogramVec
	playErrorsTotal     *prometheus.CounterVec
	sessionEventsTotal  *prometheus.CounterVec
	liveSessions        prometheus.Gauge
	evaluationsTotal    *prometheus.CounterVec
	conceptLookupsTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the play engine.
func RegisterMetrics() {
	registerOnce.Do(func() {
		playRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "play_requests_total",
			Help: "Total number of play API requests served.",
		}, []string{"method", "route", "status"})

		playLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "play_latency_seconds",
			Help:    "Latency distribution for play API requests.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"method", "route"})

		playErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "play_errors_total",
			Help: "Total number of error responses returned by play endpoints.",
		}, []string{"method", "route", "status"})

		sessionEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "play_session_events_total",
			Help: "Session lifecycle events by variant (created, consumed, restored, expired, deleted).",
		}, []string{"variant", "event"})

		liveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "play_sessions_live",
			Help: "Number of sessions currently held by the in-memory store.",
		})

		evaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "play_evaluations_total",
			Help: "Evaluations by variant and outcome (correct, incorrect, failed).",
		}, []string{"variant", "outcome"})

		conceptLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "play_concept_lookups_total",
			Help: "Learning context resolutions by source (cache, catalog, static, fallback).",
		}, []string{"source"})

		prometheus.MustRegister(
			playRequestsTotal,
			playLatencySeconds,
			playErrorsTotal,
			sessionEventsTotal,
			liveSessions,
			evaluationsTotal,
			conceptLookupsTotal,
		)
	})
}

// PlayRequests exposes the counter for play requests.
func PlayRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return playRequestsTotal
}

// PlayLatency exposes the latency histogram for play requests.
func PlayLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return playLatencySeconds
}

// PlayErrors exposes the counter for play error responses.
func PlayErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return playErrorsTotal
}

// SessionEvents exposes the session lifecycle counter.
func SessionEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return sessionEventsTotal
}

// LiveSessions exposes the live session gauge.
func LiveSessions() prometheus.Gauge {
	RegisterMetrics()
	return liveSessions
}

// Evaluations exposes the evaluation outcome counter.
func Evaluations() *prometheus.CounterVec {
	RegisterMetrics()
	return evaluationsTotal
}

// ConceptLookups exposes the learning context resolution counter.
func ConceptLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return conceptLookupsTotal
}

// MetricsHandler exposes the Prometheus scrape endpoint via Fiber.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
}
