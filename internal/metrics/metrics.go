// Package metrics exposes the Prometheus collectors of the presale service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "presale"

var (
	// Registry holds the service collectors.
	Registry = prometheus.NewRegistry()

	depositsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deposits_total",
			Help:      "Deposit submissions by outcome.",
		},
		[]string{"outcome"},
	)

	depositedLamports = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deposited_lamports_total",
			Help:      "Lamports credited to positions.",
		},
	)

	ledgerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "rpc_duration_seconds",
			Help:      "Duration of chain RPC transaction lookups.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		},
		[]string{"result"},
	)

	finalizedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "finalized_total",
			Help:      "Finalized presales by outcome.",
		},
		[]string{"outcome"},
	)

	hardCapOverflows = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hard_cap_overflows_total",
			Help:      "Credited deposits that left a presale above its hard cap.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		depositsTotal,
		depositedLamports,
		ledgerDuration,
		finalizedTotal,
		hardCapOverflows,
		httpRequests,
		httpDuration,
	)
}

// Handler returns an HTTP handler exposing the registered metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordDeposit counts a deposit submission. outcome is "recorded" or the
// rejection reason.
func RecordDeposit(outcome string) {
	depositsTotal.WithLabelValues(outcome).Inc()
}

// AddDepositedLamports adds a credited amount.
func AddDepositedLamports(amount int64) {
	if amount > 0 {
		depositedLamports.Add(float64(amount))
	}
}

// ObserveLedgerRPC records the latency of one transaction lookup.
func ObserveLedgerRPC(result string, d time.Duration) {
	ledgerDuration.WithLabelValues(result).Observe(d.Seconds())
}

// RecordFinalized counts a finalized presale.
func RecordFinalized(outcome string) {
	finalizedTotal.WithLabelValues(outcome).Inc()
}

// RecordHardCapOverflow counts a deposit credited past the hard cap.
func RecordHardCapOverflow() {
	hardCapOverflows.Inc()
}

// ObserveHTTPRequest records one handled request. route is the route name,
// not the raw path, to keep label cardinality bounded.
func ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
