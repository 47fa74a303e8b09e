// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TransfersCompleted counts settled transfers.
	TransfersCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settlement_transfers_completed_total",
		Help: "Number of transfers settled and delegated to the bridge",
	})

	// TransfersFailed counts aborted transfer requests.
	TransfersFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settlement_transfers_failed_total",
		Help: "Number of transfer requests aborted before commit",
	})

	// FeesCollected accumulates collected fees in micro-units per currency.
	FeesCollected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_fees_collected_micro_total",
		Help: "Total fees collected, in micro-units, by currency",
	}, []string{"currency"})

	// HTTPRequests counts API requests by method, path and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_http_requests_total",
		Help: "Number of HTTP requests processed",
	}, []string{"method", "path", "status"})
)

// Handler returns the /metrics endpoint handler.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
