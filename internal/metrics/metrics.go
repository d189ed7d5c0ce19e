// Package metrics holds the Prometheus collectors of the kiosk service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BalanceLookups counts finished balance lookups by outcome
	// (found, not_found, error, stale).
	BalanceLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kiosk_balance_lookups_total",
		Help: "Balance lookups by outcome",
	}, []string{"outcome"})

	// Transactions counts submitted credits and debits by result
	// (ok, invalid, rejected, failed).
	Transactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kiosk_transactions_total",
		Help: "Ledger transactions by kind and result",
	}, []string{"kind", "result"})

	// Sessions is the number of open form sessions by kind.
	Sessions = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "kiosk_sessions",
		Help: "Open kiosk sessions",
	}, []string{"kind"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kiosk_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "route", "status"})

	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kiosk_http_request_duration_seconds",
		Help:    "Request latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"method", "route"})
)

// Transaction results.
const (
	ResultOK       = "ok"
	ResultInvalid  = "invalid"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
)
