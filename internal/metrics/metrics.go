package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SubmissionsTotal counts gateway submissions by operation and outcome
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smilecoin_gateway_submissions_total",
			Help: "Total number of state-changing contract calls submitted",
		},
		[]string{"operation", "status"},
	)

	// ConfirmationDuration tracks time from submission to confirmed receipt
	ConfirmationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "smilecoin_gateway_confirmation_seconds",
			Help:    "Time spent waiting for transaction confirmation",
			Buckets: []float64{1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"operation"},
	)

	// PollsTotal counts explicit confirmation re-checks by outcome
	PollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smilecoin_gateway_polls_total",
			Help: "Total number of transaction confirmation polls",
		},
		[]string{"status"},
	)

	// EventsIndexed counts indexed events by species and delivery path
	EventsIndexed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smilecoin_indexer_events_total",
			Help: "Total number of on-chain events indexed",
		},
		[]string{"species", "path"},
	)

	// IndexErrors counts per-event indexing failures
	IndexErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smilecoin_indexer_errors_total",
			Help: "Total number of event indexing failures",
		},
		[]string{"species", "path"},
	)

	// LastIndexedBlock tracks the newest block observed per species
	LastIndexedBlock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "smilecoin_indexer_last_block",
			Help: "Last block number indexed per event species",
		},
		[]string{"species"},
	)

	// QueueDepth tracks the live event queue occupancy
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "smilecoin_indexer_queue_depth",
			Help: "Number of events waiting in the indexing queue",
		},
	)
)
