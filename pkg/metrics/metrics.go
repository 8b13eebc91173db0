package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Inbound SMTP deliveries, by outcome: accepted, bounced.
	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkwell_deliveries_total",
			Help: "Inbound SMTP deliveries by outcome",
		},
		[]string{"outcome"},
	)

	// Ingestion pipeline runs, by status: success, parse_error,
	// raw_missing, failed.
	IngestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkwell_ingests_total",
			Help: "Ingestion pipeline runs by status",
		},
		[]string{"status"},
	)

	// Ingestions that reused an existing article instead of creating one.
	DedupeHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inkwell_dedupe_hits_total",
			Help: "Ingestions resolved to an already-known content fingerprint",
		},
	)

	// Fire-and-forget ingest handoffs that never reached the API.
	HandoffFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inkwell_handoff_failures_total",
			Help: "Ingest handoffs dropped after delivery acceptance",
		},
	)

	// Raw messages removed by the retention sweep.
	RetentionDeletesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inkwell_retention_deletes_total",
			Help: "Raw messages deleted by the retention sweep",
		},
	)
)
