// Package replication mirrors the family dataset into the versioned store.
//
// Every mutation of the record store hands the full dataset to
// Orchestrator.Sync, which attempts an immediate push. A failed push is
// queued in memory and retried by a single background loop, strictly FIFO
// and one operation at a time.
//
// # Backoff
//
// The wait before each retry depends on the orchestrator-wide failure
// counter, not on the operation being retried: ShortDelay while fewer than
// FailureThreshold consecutive pushes have failed, LongDelay afterwards.
// Any successful push resets the counter. An operation that has failed
// MaxAttempts times, counting the immediate push, is dropped and logged at
// error level.
//
// # Durability
//
// The queue lives only in process memory. A restart drops pending retries;
// the next successful push of a newer dataset supersedes them anyway, since
// every operation carries a full snapshot.
//
// # Lifecycle
//
//	orch := replication.New(cfg.Sync, store, logger)
//	orch.Start(ctx)
//	defer orch.Stop()
//
// Sync may be called before Start. Failed operations are queued and the
// retry loop picks them up once the orchestrator is started.
package replication
