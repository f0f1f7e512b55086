// Package metrics defines Prometheus metrics for the replication engine.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	SyncQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "heritage_sync_queue_depth",
			Help: "Sync operations waiting for a retry",
		},
	)

	SyncFailureCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "heritage_sync_failure_count",
			Help: "Consecutive failed pushes since the last success",
		},
	)

	SyncPushTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "heritage_sync_push_total",
			Help: "Pushes to the versioned store by result",
		},
		[]string{"result"},
	)

	SyncAbandonedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "heritage_sync_abandoned_total",
			Help: "Sync operations dropped after exhausting their attempts",
		},
	)

	BackupCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "heritage_backup_created_total",
			Help: "Backups written by trigger and destination",
		},
		[]string{"trigger", "destination"},
	)

	BackupPrunedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "heritage_backup_pruned_total",
			Help: "Backups removed by the retention policy",
		},
		[]string{"trigger"},
	)

	ReconcileUpdatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "heritage_reconcile_updated_total",
			Help: "Records whose monarch association changed, by mode",
		},
		[]string{"mode"},
	)
)

func init() {
	prometheus.MustRegister(
		SyncQueueDepth, SyncFailureCount,
		SyncPushTotal, SyncAbandonedTotal,
		BackupCreatedTotal, BackupPrunedTotal,
		ReconcileUpdatedTotal,
	)
}
