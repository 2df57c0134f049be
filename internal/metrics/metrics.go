package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	reservationsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tailtown",
			Name:      "reservations_created_total",
			Help:      "Reservations created, by initial status.",
		},
		[]string{"status"},
	)

	reservationConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tailtown",
			Name:      "reservation_conflicts_total",
			Help:      "Booking attempts rejected by the overlap check.",
		},
	)

	statusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tailtown",
			Name:      "reservation_transitions_total",
			Help:      "Lifecycle transitions, by target status.",
		},
		[]string{"to"},
	)

	txRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tailtown",
			Name:      "reservation_tx_retries_total",
			Help:      "Transaction retries after serialization aborts.",
		},
	)

	syncRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tailtown",
			Name:      "gingr_sync_records_total",
			Help:      "Gingr sync records processed, by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			reservationsCreated,
			reservationConflicts,
			statusTransitions,
			txRetries,
			syncRecords,
		)
	})
}

func IncCreated(status string) { reservationsCreated.WithLabelValues(status).Inc() }
func IncConflict() { reservationConflicts.Inc() }
func IncTransition(to string) { statusTransitions.WithLabelValues(to).Inc() }
func IncTxRetry() { txRetries.Inc() }
func IncSyncRecord(outcome string) { syncRecords.WithLabelValues(outcome).Inc() }
