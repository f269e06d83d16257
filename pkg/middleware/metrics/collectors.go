package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	responseTime = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "response_time",
			Help:    "http response time.",
			Buckets: []float64{0.005, 0.05, 0.5, 1, 5, 10, 30, 60},
		},
	)

	totalHttpRequestsFromRole = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_http_requests_from_role", Help: "http requests from role"},
		[]string{"role"},
	)

	totalHttpRequestsToUri = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_http_requests_to_uri", Help: "http requests to uri"},
		[]string{"code", "uri", "method"},
	)

	totalHttpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_http_requests", Help: "http requests by code, and method"},
		[]string{"code", "method"},
	)

	inflightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "http_requests_in_flight", Help: "http requests currently being served"},
	)

	responseBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_response_bytes_total", Help: "bytes written per normalized uri"},
		[]string{"uri"},
	)

	inferenceCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "inference_calls_total", Help: "inference invocations by kind, function and outcome"},
		[]string{"kind", "function", "outcome"},
	)

	inferenceDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inference_duration_seconds",
			Help:    "time spent inside registered inference functions.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(
		responseTime,
		totalHttpRequestsFromRole,
		totalHttpRequestsToUri,
		totalHttpRequests,
		inflightRequests,
		responseBytes,
		inferenceCalls,
		inferenceDuration,
	)
}
