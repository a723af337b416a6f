package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	AssignmentsTotal     *prometheus.CounterVec
	ConflictsRejected    prometheus.Counter
	RollbacksTotal       *prometheus.CounterVec
	ReloadsTotal         *prometheus.CounterVec
	ReloadDuration       prometheus.Histogram
	BoardQueueSize       prometheus.Gauge
	BoardAssignedSize    prometheus.Gauge
	OutboxEventsTotal    *prometheus.CounterVec
	OutboxPendingEvents  prometheus.Gauge
	DatabaseErrors       *prometheus.CounterVec
	RemoteWriteDuration  *prometheus.HistogramVec
}

// NewMetrics creates and registers all metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		AssignmentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "frontdesk_assignments_total",
				Help: "Assignment operations by type and result",
			},
			[]string{"operation", "result"},
		),
		ConflictsRejected: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "frontdesk_conflicts_rejected_total",
				Help: "Assignments rejected by the overlap check before any remote write",
			},
		),
		RollbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "frontdesk_rollbacks_total",
				Help: "Optimistic state rollbacks after a failed remote write",
			},
			[]string{"operation"},
		),
		ReloadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "frontdesk_reloads_total",
				Help: "Full board refetches by result",
			},
			[]string{"result"},
		),
		ReloadDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "frontdesk_reload_duration_seconds",
				Help:    "Time to refetch and rebuild the board state",
				Buckets: prometheus.DefBuckets,
			},
		),
		BoardQueueSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "frontdesk_board_queue_size",
				Help: "Patients currently waiting in the queue",
			},
		),
		BoardAssignedSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "frontdesk_board_assigned_size",
				Help: "Patients currently assigned on the board",
			},
		),
		OutboxEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "frontdesk_outbox_events_total",
				Help: "Outbox events by type and status",
			},
			[]string{"event_type", "status"},
		),
		OutboxPendingEvents: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "frontdesk_outbox_pending_events",
				Help: "Outbox events waiting to be published",
			},
		),
		DatabaseErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "frontdesk_database_errors_total",
				Help: "Database errors by operation",
			},
			[]string{"operation"},
		),
		RemoteWriteDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "frontdesk_remote_write_duration_seconds",
				Help:    "Latency of backend writes by operation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}
