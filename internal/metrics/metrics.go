package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TransactionsSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wallet_transactions_submitted_total",
			Help: "Transfer requests accepted for processing",
		},
	)
	TransactionsSettled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_transactions_settled_total",
			Help: "Transactions settled by terminal status",
		},
		[]string{"status"}, // SUCCESS|FAILED
	)
	SettlementDelay = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wallet_settlement_delay_seconds",
			Help:    "Drawn processing delay per transaction",
			Buckets: prometheus.DefBuckets,
		},
	)
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "wallet_worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
)

var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(TransactionsSubmitted)
	prometheus.MustRegister(TransactionsSettled)
	prometheus.MustRegister(SettlementDelay)
	prometheus.MustRegister(WorkerQueueDepth)
}
