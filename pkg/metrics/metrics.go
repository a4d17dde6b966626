package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Submission metrics
	OrdersSubmittedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "inbound_orders_submitted_total",
			Help: "Total number of orders submitted successfully",
		},
	)

	OrdersFailedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "inbound_orders_failed_total",
			Help: "Total number of order submissions that failed",
		},
	)

	BatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inbound_batches_total",
			Help: "Total number of submission batches by final status",
		},
		[]string{"status"},
	)

	// Extraction metrics
	ExtractionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inbound_extractions_total",
			Help: "Total number of mailbox extraction runs by outcome",
		},
		[]string{"status"},
	)

	// Automation process metrics
	ScriptDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inbound_script_duration_seconds",
			Help:    "Wall-clock duration of automation script invocations",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"operation"},
	)

	ScriptInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "inbound_script_inflight",
			Help: "Number of automation script invocations currently running",
		},
	)

	// Protocol metrics
	RPCRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inbound_rpc_requests_total",
			Help: "Total number of JSON-RPC requests by method",
		},
		[]string{"method"},
	)
)

// Register registers all metrics with the default Prometheus registry.
// Call once at startup.
func Register() {
	prometheus.MustRegister(
		OrdersSubmittedTotal,
		OrdersFailedTotal,
		BatchesTotal,
		ExtractionsTotal,
		ScriptDurationSeconds,
		ScriptInflight,
		RPCRequestsTotal,
	)
}

// Handler returns the HTTP handler serving the metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}
