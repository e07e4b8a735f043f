// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the app collectors so handlers take one dependency.
type Metrics struct {
	ExtractionsTotal      *prometheus.CounterVec
	TransactionsExtracted prometheus.Counter
	LedgerSize            prometheus.Gauge
}

// New registers the collectors on reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in
// tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ExtractionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "moneyapp_extractions_total",
			Help: "Extraction requests by upload kind and outcome.",
		}, []string{"kind", "outcome"}),
		TransactionsExtracted: factory.NewCounter(prometheus.CounterOpts{
			Name: "moneyapp_transactions_extracted_total",
			Help: "Transactions produced by the extraction pipeline.",
		}),
		LedgerSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "moneyapp_ledger_entries",
			Help: "Entries currently stored in the ledger.",
		}),
	}
}
