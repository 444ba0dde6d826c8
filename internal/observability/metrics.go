package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the catalog collectors. Process, Go runtime and database pool metrics
// live in the default registry; Gatherer exposes both.
type Metrics struct {
	Registry *prometheus.Registry

	syncOutcomes *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	syncOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "sync_outcomes_total",
		Help:      "Catalog operations by the path they took (synced_remote or local_only).",
	}, []string{"operation", "outcome"})
	reg.MustRegister(syncOutcomes)

	return &Metrics{
		Registry:     reg,
		syncOutcomes: syncOutcomes,
	}
}

func (m *Metrics) Gatherer() prometheus.Gatherer {
	return prometheus.Gatherers{m.Registry, prometheus.DefaultGatherer}
}

func (m *Metrics) ObserveSync(operation, outcome string) {
	m.syncOutcomes.WithLabelValues(operation, outcome).Inc()
}
