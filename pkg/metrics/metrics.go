package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// OrdersTotal counts submitted orders by intent, type and outcome (ok|rejected|unavailable).
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slingshot_orders_total",
			Help: "Orders submitted to the exchange",
		},
		[]string{"intent", "type", "outcome"},
	)

	ExchangeRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slingshot_exchange_retries_total",
			Help: "Retried exchange calls split by operation",
		},
		[]string{"operation"},
	)

	FillWaitSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "slingshot_fill_wait_seconds",
			Help:    "Time spent waiting for an order fill",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)

	Decisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slingshot_decisions_total",
			Help: "Decisions received from the signal generator",
		},
		[]string{"symbol", "decision"},
	)

	OpenPositions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "slingshot_open_positions",
			Help: "Number of positions currently held",
		},
	)

	RealizedResult = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slingshot_closed_positions_total",
			Help: "Closed positions split by side and result (win|loss)",
		},
		[]string{"side", "result"},
	)

	SkippedCycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slingshot_skipped_cycles_total",
			Help: "Controller cycles skipped because the previous one was still running",
		},
		[]string{"symbol"},
	)
)

func init() {
	prometheus.MustRegister(
		OrdersTotal,
		ExchangeRetries,
		FillWaitSeconds,
		Decisions,
		OpenPositions,
		RealizedResult,
		SkippedCycles,
	)
}
