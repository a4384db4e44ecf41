package metrics

import "github.com/prometheus/client_golang/prometheus"

// InventoryMetrics counts the interesting failure modes of the stock ledger:
// optimistic-lock conflicts, rejected debits, and partial cross-store writes.
type InventoryMetrics struct {
	conflicts     *prometheus.CounterVec
	shortfalls    prometheus.Counter
	partialWrites prometheus.Counter
}

// NewInventoryMetrics registers the ledger metrics on the provided registerer.
func NewInventoryMetrics(reg prometheus.Registerer) *InventoryMetrics {
	if reg == nil {
		return &InventoryMetrics{}
	}
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_version_conflicts_total",
		Help: "Optimistic-lock conflicts by operation.",
	}, []string{"operation"})
	shortfalls := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_debit_shortfalls_total",
		Help: "Batch debits rejected for insufficient stock.",
	})
	partialWrites := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_partial_writes_total",
		Help: "Ledger updates whose document-store commit failed.",
	})
	reg.MustRegister(conflicts, shortfalls, partialWrites)
	return &InventoryMetrics{
		conflicts:     conflicts,
		shortfalls:    shortfalls,
		partialWrites: partialWrites,
	}
}

// IncConflict increments the conflict counter for the named operation.
func (i *InventoryMetrics) IncConflict(operation string) {
	if i == nil || i.conflicts == nil {
		return
	}
	i.conflicts.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncShortfall increments the rejected-debit counter.
func (i *InventoryMetrics) IncShortfall() {
	if i == nil || i.shortfalls == nil {
		return
	}
	i.shortfalls.Inc()
}

// IncPartialWrite increments the partial-write counter.
func (i *InventoryMetrics) IncPartialWrite() {
	if i == nil || i.partialWrites == nil {
		return
	}
	i.partialWrites.Inc()
}
