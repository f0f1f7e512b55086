package reconcile

import (
	"context"
	"fmt"

	"heritage/core/backup"
	"heritage/core/dataset"
	"heritage/core/metrics"
	"heritage/core/versionstore"

	"go.uber.org/zap"
)

// Runner executes reconciliation passes against a Source.
type Runner struct {
	source    Source
	snapshots Snapshotter
	fallback  Snapshotter
	intervals func(ctx context.Context) ([]dataset.Interval, error)
	logger    *zap.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithIntervalCache reads the reign list through cache instead of the source.
func WithIntervalCache(cache *IntervalCache) RunnerOption {
	return func(r *Runner) { r.intervals = cache.Get }
}

// WithFallback replaces the in-process snapshot used when the primary
// backup fails.
func WithFallback(s Snapshotter) RunnerOption {
	return func(r *Runner) { r.fallback = s }
}

// NewRunner creates a Runner. snapshots may be nil, in which case only the
// in-process fallback snapshot is taken before applying.
func NewRunner(source Source, snapshots Snapshotter, logger *zap.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		source:    source,
		snapshots: snapshots,
		intervals: source.Intervals,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.fallback == nil {
		r.fallback = backup.NewManager(versionstore.NewMemory(), backup.DefaultConfig(), logger,
			backup.WithDestination(backup.DestinationFallback))
	}
	return r
}

// Plan computes the per-record outcome without touching any store.
// Changed records are tagged would_update.
func Plan(records []dataset.Record, intervals []dataset.Interval) Report {
	report := Report{
		Total:   len(records),
		DryRun:  true,
		Results: make([]RecordResult, 0, len(records)),
	}

	for _, rec := range records {
		res := RecordResult{ExternalID: rec.ExternalID, Name: rec.Name}
		if rec.Born == nil {
			res.Status = StatusSkipped
			report.Results = append(report.Results, res)
			continue
		}

		report.Processed++
		computed := MatchIDs(*rec.Born, rec.Died, intervals)
		if dataset.SameIDs(rec.Monarchs, computed) {
			res.Status = StatusNoChange
		} else {
			res.Status = StatusWouldUpdate
			res.Previous = append([]string{}, rec.Monarchs...)
			res.Computed = computed
			report.Updated++
		}
		report.Results = append(report.Results, res)
	}

	return report
}

// Run performs one reconciliation pass.
func (r *Runner) Run(ctx context.Context, opts Options) (Report, error) {
	records, err := r.source.Records(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load records: %w", err)
	}
	intervals, err := r.intervals(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load intervals: %w", err)
	}

	report := Plan(records, intervals)
	report.DryRun = opts.DryRun

	if opts.DryRun {
		report.Message = fmt.Sprintf("Dry run: %d of %d records would be updated", report.Updated, report.Processed)
		metrics.ReconcileUpdatedTotal.WithLabelValues("dry_run").Add(float64(report.Updated))
		r.logger.Info("Reconciliation dry run finished",
			zap.Int("would_update", report.Updated),
			zap.Int("processed", report.Processed),
			zap.Int("total", report.Total))
		return report, nil
	}

	if report.Updated == 0 {
		report.Message = fmt.Sprintf("All %d records already up to date", report.Processed)
		r.logger.Info("Reconciliation found nothing to update", zap.Int("processed", report.Processed))
		return report, nil
	}

	report.Backup = r.snapshot(ctx, records)

	changes := make(map[string][]string, report.Updated)
	for _, res := range report.Results {
		if res.Status == StatusWouldUpdate {
			changes[res.ExternalID] = res.Computed
		}
	}
	if err := r.write(ctx, changes); err != nil {
		return report, fmt.Errorf("failed to write associations: %w", err)
	}

	for i := range report.Results {
		if report.Results[i].Status == StatusWouldUpdate {
			report.Results[i].Status = StatusUpdated
		}
	}
	report.Message = fmt.Sprintf("Updated %d of %d records", report.Updated, report.Processed)
	metrics.ReconcileUpdatedTotal.WithLabelValues("apply").Add(float64(report.Updated))
	r.logger.Info("Reconciliation applied",
		zap.Int("updated", report.Updated),
		zap.Int("processed", report.Processed),
		zap.String("backup", report.Backup))

	return report, nil
}

// snapshot backs up records before they are rewritten. A failing primary
// falls back to the in-process snapshot; a failing fallback is only logged.
func (r *Runner) snapshot(ctx context.Context, records []dataset.Record) string {
	if r.snapshots != nil {
		meta, err := r.snapshots.CreateBackup(ctx, records, backup.TriggerAutoBulk)
		if err == nil {
			return meta.Filename
		}
		r.logger.Warn("Pre-reconciliation backup failed, using local snapshot", zap.Error(err))
	}

	meta, err := r.fallback.CreateBackup(ctx, records, backup.TriggerAutoBulk)
	if err != nil {
		r.logger.Warn("Local snapshot failed", zap.Error(err))
		return ""
	}
	return meta.Filename
}

func (r *Runner) write(ctx context.Context, changes map[string][]string) error {
	if bw, ok := r.source.(BatchWriter); ok {
		return bw.SetAssociations(ctx, changes)
	}
	for id, ids := range changes {
		if err := r.source.SetAssociation(ctx, id, ids); err != nil {
			return fmt.Errorf("record %s: %w", id, err)
		}
	}
	return nil
}
