package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Routing metrics
	QuoteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "convert_quote_requests_total",
			Help: "Total number of quote requests",
		},
		[]string{"route", "status"},
	)

	QuoteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "convert_quote_duration_seconds",
			Help:    "Quote request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	RouteSelections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "convert_route_selections_total",
			Help: "Total number of times each route won selection",
		},
		[]string{"route"},
	)

	WeightFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "convert_weight_failures_total",
			Help: "Total number of weight evaluations downgraded to zero after an error or panic",
		},
		[]string{"route"},
	)

	NoRouteFound = promauto.NewCounter(prometheus.CounterOpts{
		Name: "convert_no_route_found_total",
		Help: "Total number of selections where no route was applicable",
	})

	SelectionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "convert_selection_duration_seconds",
		Help:    "Weight fan-out and selection duration in seconds",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.002, 0.005, 0.01, 0.02, 0.05},
	})

	// Swap metrics
	SwapRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "convert_swap_requests_total",
			Help: "Total number of swap transaction build requests",
		},
		[]string{"route", "status"},
	)

	SwapDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "convert_swap_duration_seconds",
			Help:    "Swap transaction build duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// Valuation metrics
	UsdLookupFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "convert_usd_lookup_failures_total",
			Help: "Total number of USD valuation lookups that failed and were degraded to null",
		},
		[]string{"side"},
	)

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "convert_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "convert_http_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
