// Package replication exposes the sync, backup and reconciliation controls
// over HTTP.
//
// # Endpoints
//
//   - GET  /sync/status            orchestrator snapshot
//   - POST /sync/test              connectivity check against the mirror
//   - POST /sync/retry             reset backoff and retry the queue now
//   - POST /sync/push              push the current dataset immediately
//   - GET  /sync/logs              recent sync log entries
//   - GET  /backups                backups, newest first
//   - POST /backups                take a backup (trigger defaults to manual)
//   - GET  /backups/:filename      records of one backup
//   - DELETE /backups/:filename    delete one backup
//   - POST /backups/:filename/restore  restore a backup over the dataset
//   - POST /reconcile/lifespans    recompute monarch associations (?dryRun=true)
//
// Reconciliation and restore are serialized; a second request while one is
// running gets 409 Conflict.
package replication
