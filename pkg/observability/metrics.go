// Package observability holds Prometheus metrics and the metrics/health HTTP server.
package observability

import (
	"context"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RPC request metrics
	rpcRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settleup_rpc_requests_total",
			Help: "Total number of RPC requests",
		},
		[]string{"procedure", "code"},
	)

	rpcRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "settleup_rpc_request_duration_seconds",
			Help:    "Duration of RPC requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"procedure"},
	)

	rpcRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "settleup_rpc_requests_in_flight",
			Help: "Number of RPC requests currently being processed",
		},
	)
)

// MetricsInterceptor returns a Connect unary interceptor that records Prometheus metrics.
func MetricsInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			rpcRequestsInFlight.Inc()
			defer rpcRequestsInFlight.Dec()

			resp, err := next(ctx, req)

			procedure := req.Spec().Procedure
			rpcRequestDuration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())
			rpcRequestsTotal.WithLabelValues(procedure, StatusCode(err)).Inc()

			return resp, err
		}
	}
}

// StatusCode returns the Connect code name of err, or "ok".
func StatusCode(err error) string {
	if err == nil {
		return "ok"
	}
	return connect.CodeOf(err).String()
}
