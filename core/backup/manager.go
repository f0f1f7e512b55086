package backup

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strconv"
	"time"

	"heritage/core/dataset"
	"heritage/core/metrics"
	"heritage/core/utils"
	"heritage/core/versionstore"

	"go.uber.org/zap"
)

// Manager creates, lists, and prunes dataset snapshots.
type Manager struct {
	store  versionstore.Store
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
	dest   string
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the clock used for backup timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Metric destinations for created backups.
const (
	DestinationStore    = "store"
	DestinationFallback = "fallback"
)

// WithDestination labels the backups this manager writes in metrics.
func WithDestination(dest string) Option {
	return func(m *Manager) { m.dest = dest }
}

// NewManager creates a backup manager writing into store.
func NewManager(store versionstore.Store, cfg Config, logger *zap.Logger, opts ...Option) *Manager {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultConfig().Prefix
	}
	m := &Manager{store: store, cfg: cfg, logger: logger, now: time.Now, dest: DestinationStore}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateBackup writes a snapshot of records and, for non-manual triggers,
// prunes older backups of the same trigger.
func (m *Manager) CreateBackup(ctx context.Context, records []dataset.Record, trigger Trigger) (Metadata, error) {
	if _, err := ParseTrigger(string(trigger)); err != nil {
		return Metadata{}, err
	}

	data, err := dataset.Encode(records)
	if err != nil {
		return Metadata{}, err
	}

	ts := m.now().UTC().Truncate(time.Second)
	meta := Metadata{
		Filename:    Filename(ts, trigger),
		Timestamp:   ts,
		Trigger:     trigger,
		RecordCount: len(records),
		SizeBytes:   int64(len(data)),
	}

	_, err = m.store.Put(ctx, m.objectPath(meta.Filename), data, versionstore.PutOptions{
		Message: fmt.Sprintf("Backup (%s): %d records", trigger, len(records)),
		Metadata: map[string]string{
			versionstore.MetaRecordCount: strconv.Itoa(len(records)),
			versionstore.MetaTrigger:     string(trigger),
		},
	})
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to write backup %s: %w", meta.Filename, err)
	}

	metrics.BackupCreatedTotal.WithLabelValues(string(trigger), m.dest).Inc()
	m.logger.Info("Backup created",
		zap.String("filename", meta.Filename),
		zap.String("trigger", string(trigger)),
		zap.Int("records", meta.RecordCount),
		zap.Int64("size_bytes", meta.SizeBytes))

	if trigger != TriggerManual {
		if _, err := m.CleanupOldBackups(ctx, trigger); err != nil {
			m.logger.Warn("Backup cleanup failed", zap.String("trigger", string(trigger)), zap.Error(err))
		}
	}

	return meta, nil
}

// ListBackups returns all backups, newest first. Entries whose names do not
// follow the filename contract are skipped.
func (m *Manager) ListBackups(ctx context.Context) ([]Metadata, error) {
	entries, err := m.store.List(ctx, m.cfg.Prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	backups := make([]Metadata, 0, len(entries))
	for _, e := range entries {
		ts, trigger, ok := ParseFilename(e.Name)
		if !ok {
			m.logger.Debug("Skipping unrecognised backup entry", zap.String("name", e.Name))
			continue
		}
		backups = append(backups, Metadata{
			Filename:    e.Name,
			Timestamp:   ts,
			Trigger:     trigger,
			RecordCount: utils.ToInt(e.Metadata[versionstore.MetaRecordCount]),
			SizeBytes:   e.Size,
		})
	}

	sortNewestFirst(backups)
	return backups, nil
}

// GetBackupContent fetches and decodes one backup.
func (m *Manager) GetBackupContent(ctx context.Context, filename string) ([]dataset.Record, error) {
	if _, _, ok := ParseFilename(filename); !ok {
		return nil, fmt.Errorf("%q: %w", filename, ErrInvalidFilename)
	}

	content, err := m.store.Get(ctx, m.objectPath(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to read backup %s: %w", filename, err)
	}

	records, err := dataset.Decode(content.Data)
	if err != nil {
		return nil, fmt.Errorf("backup %s: %w", filename, err)
	}
	return records, nil
}

// DeleteBackup removes a single backup on explicit request.
func (m *Manager) DeleteBackup(ctx context.Context, filename string) error {
	if _, _, ok := ParseFilename(filename); !ok {
		return fmt.Errorf("%q: %w", filename, ErrInvalidFilename)
	}
	if err := m.store.Delete(ctx, m.objectPath(filename), ""); err != nil {
		return fmt.Errorf("failed to delete backup %s: %w", filename, err)
	}
	m.logger.Info("Backup deleted", zap.String("filename", filename))
	return nil
}

func (m *Manager) objectPath(filename string) string {
	return path.Join(m.cfg.Prefix, filename)
}

func sortNewestFirst(backups []Metadata) {
	sort.SliceStable(backups, func(i, j int) bool {
		if !backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Timestamp.After(backups[j].Timestamp)
		}
		return backups[i].Filename > backups[j].Filename
	})
}
