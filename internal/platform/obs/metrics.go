package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PairsEvaluated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trade_pairs_evaluated_total",
			Help: "Supplier/demander pairs with a matching item that were priced",
		},
	)

	PairsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trade_pairs_rejected_total",
			Help: "Pairs dropped by the matching engine, by reason",
		},
		[]string{"reason"},
	)

	DistanceFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trade_distance_fallback_total",
			Help: "Haversine fallbacks, scope=matrix for whole requests and scope=leg for single pairs",
		},
		[]string{"scope"},
	)

	RoutingCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trade_routing_calls_total",
			Help: "Routing matrix calls by outcome",
		},
		[]string{"outcome"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trade_http_requests_total",
			Help: "HTTP requests by path and status",
		},
		[]string{"path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trade_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)
)
