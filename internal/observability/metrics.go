// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the recipe service.
package observability

import "github.com/prometheus/client_golang/prometheus"

// GenerationBuckets covers LLM latencies from 100ms to 2 minutes.
var GenerationBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// RequestsTotal counts HTTP requests by method, route and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipewriter_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration records HTTP request duration in seconds.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipewriter_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: GenerationBuckets,
		},
		[]string{"method", "route"},
	)

	// GenerationCallsTotal counts text generation calls by article section and outcome.
	GenerationCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipewriter_generation_calls_total",
			Help: "Text generation calls",
		},
		[]string{"section", "status"},
	)

	// GenerationLatency records text generation latency per article section.
	GenerationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipewriter_generation_latency_seconds",
			Help:    "Text generation latency",
			Buckets: GenerationBuckets,
		},
		[]string{"section"},
	)

	// QueriesTotal counts article queries by outcome stage ("ok" or the failing stage).
	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipewriter_queries_total",
			Help: "Article queries",
		},
		[]string{"outcome"},
	)

	// LibraryRecipes reports the number of recipes in the loaded library.
	LibraryRecipes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "recipewriter_library_recipes",
			Help: "Recipes in the loaded library",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		GenerationCallsTotal,
		GenerationLatency,
		QueriesTotal,
		LibraryRecipes,
	)
}
