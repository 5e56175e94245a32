package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// QuoteAttemptsTotal counts per-source fetch attempts by result
	// (hit, miss, error).
	QuoteAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "quote_source_attempts_total", Help: "Quote source fetch attempts"},
		[]string{"source", "result"},
	)
	// PriceUpdatesTotal counts reconciliation outcomes per instrument.
	PriceUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ipo_price_updates_total", Help: "Reconciliation outcomes per IPO"},
		[]string{"outcome"},
	)
	ReconcileDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ipo_reconcile_duration_seconds",
			Help:    "Duration of full price reconciliation passes",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)
)

func init() {
	prometheus.MustRegister(QuoteAttemptsTotal, PriceUpdatesTotal, ReconcileDuration)
}

// Handler exposes the default registry; mounted at /metrics.
func Handler() http.Handler { return promhttp.Handler() }
