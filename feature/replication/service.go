package replication

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"heritage/core/backup"
	"heritage/core/dataset"
	"heritage/core/reconcile"
	"heritage/core/replication"

	"go.uber.org/zap"
)

// ErrBusy is returned while another reconciliation or restore is running.
var ErrBusy = errors.New("another bulk operation is in progress")

// Records is the part of the record store the service needs.
type Records interface {
	GetAll(ctx context.Context) ([]dataset.Record, error)
	ReplaceAll(ctx context.Context, records []dataset.Record) ([]dataset.Record, error)
}

// RestoreResult describes a completed restore.
type RestoreResult struct {
	Restored int    `json:"restored"`
	Source   string `json:"source"`
	Snapshot string `json:"snapshot,omitempty"`
}

// Service composes the replication building blocks.
type Service struct {
	orchestrator *replication.Orchestrator
	backups      *backup.Manager
	runner       *reconcile.Runner
	records      Records
	logger       *zap.Logger

	bulk sync.Mutex
}

// NewService creates a new replication service.
func NewService(orch *replication.Orchestrator, backups *backup.Manager, runner *reconcile.Runner, records Records, logger *zap.Logger) *Service {
	return &Service{
		orchestrator: orch,
		backups:      backups,
		runner:       runner,
		records:      records,
		logger:       logger,
	}
}

// Status returns the orchestrator snapshot.
func (s *Service) Status() replication.Status {
	return s.orchestrator.Status()
}

// TestConnection checks the mirror.
func (s *Service) TestConnection(ctx context.Context) replication.ConnectionResult {
	return s.orchestrator.TestConnection(ctx)
}

// ManualRetry retries queued pushes without waiting.
func (s *Service) ManualRetry() replication.RetryResult {
	return s.orchestrator.ManualRetry()
}

// Logs returns recent sync log entries.
func (s *Service) Logs() []replication.LogEntry {
	return s.orchestrator.Logs()
}

// Push syncs the current dataset as a bulk update.
func (s *Service) Push(ctx context.Context) (replication.Result, error) {
	records, err := s.records.GetAll(ctx)
	if err != nil {
		return replication.Result{}, err
	}
	return s.orchestrator.Sync(ctx, replication.KindBulk, nil, records), nil
}

// RunReconciliation runs one reconciliation pass.
func (s *Service) RunReconciliation(ctx context.Context, dryRun bool) (reconcile.Report, error) {
	if !s.bulk.TryLock() {
		return reconcile.Report{}, ErrBusy
	}
	defer s.bulk.Unlock()

	return s.runner.Run(ctx, reconcile.Options{DryRun: dryRun})
}

// ListBackups returns backups newest first.
func (s *Service) ListBackups(ctx context.Context) ([]backup.Metadata, error) {
	return s.backups.ListBackups(ctx)
}

// CreateBackup snapshots the current dataset.
func (s *Service) CreateBackup(ctx context.Context, trigger backup.Trigger) (backup.Metadata, error) {
	records, err := s.records.GetAll(ctx)
	if err != nil {
		return backup.Metadata{}, err
	}
	return s.backups.CreateBackup(ctx, records, trigger)
}

// GetBackupContent returns the records of one backup.
func (s *Service) GetBackupContent(ctx context.Context, filename string) ([]dataset.Record, error) {
	return s.backups.GetBackupContent(ctx, filename)
}

// DeleteBackup removes one backup regardless of trigger.
func (s *Service) DeleteBackup(ctx context.Context, filename string) error {
	return s.backups.DeleteBackup(ctx, filename)
}

// RestoreBackup replaces the dataset with a backup. The current dataset is
// snapshotted first with trigger pre-restore; if that fails nothing is
// replaced.
func (s *Service) RestoreBackup(ctx context.Context, filename string) (RestoreResult, error) {
	if !s.bulk.TryLock() {
		return RestoreResult{}, ErrBusy
	}
	defer s.bulk.Unlock()

	restored, err := s.backups.GetBackupContent(ctx, filename)
	if err != nil {
		return RestoreResult{}, err
	}

	current, err := s.records.GetAll(ctx)
	if err != nil {
		return RestoreResult{}, err
	}
	snapshot, err := s.backups.CreateBackup(ctx, current, backup.TriggerPreRestore)
	if err != nil {
		return RestoreResult{}, fmt.Errorf("pre-restore backup failed: %w", err)
	}

	records, err := s.records.ReplaceAll(ctx, restored)
	if err != nil {
		return RestoreResult{}, fmt.Errorf("failed to restore %s: %w", filename, err)
	}

	s.logger.Info("Backup restored",
		zap.String("backup", filename),
		zap.String("snapshot", snapshot.Filename),
		zap.Int("records", len(records)))

	return RestoreResult{Restored: len(records), Source: filename, Snapshot: snapshot.Filename}, nil
}
