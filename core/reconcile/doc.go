// Package reconcile recomputes the derived monarch association of every
// family member and writes back the records whose stored value is stale.
//
// # Matching
//
// Overlaps decides whether a lifetime [born, died] shares at least one
// calendar year with a reign. Both ends are inclusive at year granularity,
// so a reign ending the year someone is born counts, as does one beginning
// the year they died. GetOverlapping applies the predicate to the whole
// reference list and keeps its original order.
//
// # Runner
//
// The Runner performs a full-dataset pass in two steps, mirroring a
// plan/apply workflow:
//
//  1. Plan: for every record with a known birth year, compute the overlap
//     set, compare it (order-insensitively) with the stored value, and tag
//     the record no_change, would_update/updated, or skipped.
//  2. Apply (not in dry-run): snapshot the dataset through the backup
//     manager with trigger auto-bulk, falling back to an in-process snapshot
//     if that fails, then write the changed associations back through the
//     Source.
//
// Dry-run and apply plans report identical counts. Running apply twice in a
// row yields zero updates the second time.
//
// The Runner does no internal locking. Callers must not run two
// reconciliations at once.
//
// # Usage
//
//	runner := reconcile.NewRunner(store, backups, logger)
//	report, err := runner.Run(ctx, reconcile.Options{DryRun: true})
package reconcile
