package backup

import (
	"context"

	"heritage/core/metrics"

	"go.uber.org/zap"
)

// selectExpired returns the backups of trigger beyond the newest keep.
// backups must be sorted newest first.
func selectExpired(backups []Metadata, trigger Trigger, keep int) []Metadata {
	var matching []Metadata
	for _, b := range backups {
		if b.Trigger == trigger {
			matching = append(matching, b)
		}
	}
	if len(matching) <= keep {
		return nil
	}
	return matching[keep:]
}

// CleanupOldBackups applies the retention limit for trigger and returns the
// number of backups deleted. Manual backups are never touched. A failed
// delete is logged and does not stop the remaining deletions.
func (m *Manager) CleanupOldBackups(ctx context.Context, trigger Trigger) (int, error) {
	keep := m.cfg.Keep(trigger)
	if keep <= 0 {
		return 0, nil
	}

	backups, err := m.ListBackups(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, b := range selectExpired(backups, trigger, keep) {
		if err := m.store.Delete(ctx, m.objectPath(b.Filename), ""); err != nil {
			m.logger.Warn("Failed to delete expired backup", zap.String("filename", b.Filename), zap.Error(err))
			continue
		}
		deleted++
	}

	if deleted > 0 {
		metrics.BackupPrunedTotal.WithLabelValues(string(trigger)).Add(float64(deleted))
		m.logger.Info("Retention policy applied",
			zap.String("trigger", string(trigger)),
			zap.Int("kept", keep),
			zap.Int("deleted_count", deleted))
	}
	return deleted, nil
}
