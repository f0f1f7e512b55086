// Package backup keeps point-in-time snapshots of the family dataset in the
// versioned store.
//
// Every snapshot is a single JSON file named
//
//	family-data_{YYYY-MM-DD_HH-MM-SS}_{trigger}.json
//
// under the configured prefix. The name is a parseable contract: ListBackups
// derives timestamp and trigger from it and silently skips anything that
// does not match.
//
// # Triggers and retention
//
//   - manual: taken on request, never pruned automatically.
//   - auto-bulk: taken before a reconciliation apply; the newest 5 are kept.
//   - pre-restore: taken before a restore; the newest 3 are kept.
//
// Retention runs after every non-manual backup. A file that fails to delete
// is logged and skipped; the rest of the cleanup continues.
//
// # Usage
//
//	mgr := backup.NewManager(store, cfg.Backup, logger)
//	meta, err := mgr.CreateBackup(ctx, records, backup.TriggerManual)
//	list, err := mgr.ListBackups(ctx)
package backup
