// Package metrics defines and registers all custom Prometheus metrics for the
// orders console. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation (promauto) and exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "orders_console"

// ── Upstream API metrics ──────────────────────────────────────────────────────

// UpstreamRequestsTotal counts calls made to the upstream REST API.
// Labels:
//   - route: the route template (e.g. "ordens/:id/check-in"), never the expanded path
//   - method: HTTP method
//   - status: response status code, or "error" on transport failure
var UpstreamRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Total number of requests sent to the upstream API.",
	},
	[]string{"route", "method", "status"},
)

// UpstreamRequestDuration measures upstream round-trip latency.
// Label:
//   - route: the route template
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of upstream API round trips.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"route"},
)

// TokenRefreshTotal counts token refresh outcomes.
// Label:
//   - result: "success", "failure", or "shared" (joined an in-flight refresh)
var TokenRefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refresh_total",
		Help:      "Total number of token refresh attempts, by result.",
	},
	[]string{"result"},
)

// ── Cache metrics ─────────────────────────────────────────────────────────────

// CacheLookupsTotal counts query cache lookups.
// Labels:
//   - query: "me", "orders", "reports", "users"
//   - result: "hit", "miss", or "error" (cache unavailable)
var CacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Total number of query cache lookups, labelled by result (hit/miss).",
	},
	[]string{"query", "result"},
)

// ── Console HTTP metrics ──────────────────────────────────────────────────────

// HTTPRequestsTotal counts requests served by the console.
// Labels:
//   - route: echo route path (e.g. "/api/orders/:id")
//   - method: HTTP method
//   - status: response status code
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests served by the console.",
	},
	[]string{"route", "method", "status"},
)

// GuardDecisionsTotal counts route guard outcomes.
// Labels:
//   - guard: "protected" or "public"
//   - decision: "allow", "unauthenticated", "forbidden", "redirect"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions.",
	},
	[]string{"guard", "decision"},
)
