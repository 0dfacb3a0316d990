package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	apiRequestsTotal  *prometheus.CounterVec
	apiLatencySeconds *prometheus.HistogramVec
	apiErrorsTotal    *prometheus.CounterVec

	promptAnalysesTotal     *prometheus.CounterVec
	analysisCacheTotal      *prometheus.CounterVec
	benchmarkRunsTotal      *prometheus.CounterVec
	modelInvocationsTotal   *prometheus.CounterVec
	modelInvocationSeconds  *prometheus.HistogramVec
	rateLimitRejectionTotal *prometheus.CounterVec
	rewriteAttemptsTotal    *prometheus.CounterVec
	eventPublishFailures    *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "promptlab_api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "promptlab_api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 15.0, 60.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "promptlab_api_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		promptAnalysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "promptlab_prompt_analyses_total",
			Help: "Prompt analyses completed, by grade.",
		}, []string{"grade"})

		analysisCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "promptlab_analysis_cache_total",
			Help: "Analysis cache lookups, by result.",
		}, []string{"result"})

		benchmarkRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "promptlab_benchmark_runs_total",
			Help: "Benchmark runs completed, by parity verdict.",
		}, []string{"verdict"})

		modelInvocationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "promptlab_model_invocations_total",
			Help: "Benchmark path invocations, by path and status.",
		}, []string{"path", "status"})

		modelInvocationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "promptlab_model_invocation_seconds",
			Help:    "Benchmark path latency.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		}, []string{"path"})

		rateLimitRejectionTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "promptlab_rate_limit_rejections_total",
			Help: "Requests rejected by the rate limiter, by scope.",
		}, []string{"scope"})

		rewriteAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "promptlab_rewrite_attempts_total",
			Help: "Prompt rewrites produced, by source.",
		}, []string{"source"})

		eventPublishFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "promptlab_event_publish_failures_total",
			Help: "Event publish failures, by transport.",
		}, []string{"transport"})

		prometheus.MustRegister(
			apiRequestsTotal, apiLatencySeconds, apiErrorsTotal,
			promptAnalysesTotal, analysisCacheTotal, benchmarkRunsTotal,
			modelInvocationsTotal, modelInvocationSeconds,
			rateLimitRejectionTotal, rewriteAttemptsTotal, eventPublishFailures,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// PromptAnalyses counts analyses by grade.
func PromptAnalyses() *prometheus.CounterVec {
	RegisterMetrics()
	return promptAnalysesTotal
}

// AnalysisCache counts cache hits and misses.
func AnalysisCache() *prometheus.CounterVec {
	RegisterMetrics()
	return analysisCacheTotal
}

// BenchmarkRuns counts runs by verdict.
func BenchmarkRuns() *prometheus.CounterVec {
	RegisterMetrics()
	return benchmarkRunsTotal
}

// ModelInvocations counts benchmark path invocations.
func ModelInvocations() *prometheus.CounterVec {
	RegisterMetrics()
	return modelInvocationsTotal
}

// ModelInvocationLatency exposes the per-path latency histogram.
func ModelInvocationLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return modelInvocationSeconds
}

// RateLimitRejections counts rejected requests by scope.
func RateLimitRejections() *prometheus.CounterVec {
	RegisterMetrics()
	return rateLimitRejectionTotal
}

// RewriteAttempts counts produced rewrites by source.
func RewriteAttempts() *prometheus.CounterVec {
	RegisterMetrics()
	return rewriteAttemptsTotal
}

// EventPublishFailures counts failed event publishes by transport.
func EventPublishFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return eventPublishFailures
}
