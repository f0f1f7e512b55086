package replication

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"heritage/core/dataset"
	"heritage/core/metrics"
	"heritage/core/versionstore"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrDisabled is returned in results when replication is switched off.
var ErrDisabled = errors.New("replication is disabled")

// Orchestrator pushes dataset snapshots and retries failed pushes.
type Orchestrator struct {
	cfg    Config
	store  versionstore.Store
	logger *zap.Logger
	now    func() time.Time
	after  Sleeper

	// pushMu orders pushes so a snapshot is never written after a newer one.
	pushMu sync.Mutex

	mu        sync.Mutex
	seq       uint64
	confirmed uint64
	queue     []*Operation
	failures  int
	retrying  bool
	lastSync  time.Time
	lastError string
	lastCheck time.Time
	connected bool
	logs      []LogEntry

	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	wg      sync.WaitGroup
	kick    chan struct{}

	sf singleflight.Group
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithSleeper overrides how the retry loop waits.
func WithSleeper(after Sleeper) Option {
	return func(o *Orchestrator) { o.after = after }
}

// New creates an orchestrator. store may be nil, in which case the
// orchestrator reports itself unavailable and every sync fails.
func New(cfg Config, store versionstore.Store, logger *zap.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:    cfg.withDefaults(),
		store:  store,
		logger: logger,
		now:    time.Now,
		after:  time.After,
		kick:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start enables the retry loop. Operations queued before Start are picked up
// immediately.
func (o *Orchestrator) Start(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.started {
		return
	}
	o.ctx, o.cancel = context.WithCancel(ctx)
	o.started = true
	o.startLoopLocked()
}

// Stop cancels the retry loop and waits for it to exit. Queued operations
// are kept and resume on the next Start.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if !o.started {
		o.mu.Unlock()
		return
	}
	o.started = false
	o.cancel()
	o.mu.Unlock()

	o.wg.Wait()
}

// Sync pushes the dataset immediately and queues a retry on failure.
// It never returns an error; failures are reported in the Result.
func (o *Orchestrator) Sync(ctx context.Context, kind Kind, record *dataset.Record, records []dataset.Record) Result {
	if !o.available() {
		return failed(ErrDisabled)
	}

	var snapshot *dataset.Record
	if record != nil {
		c := record.Clone()
		snapshot = &c
	}
	records = dataset.CloneAll(records)

	o.pushMu.Lock()
	defer o.pushMu.Unlock()

	o.mu.Lock()
	o.seq++
	seq := o.seq
	o.mu.Unlock()

	res := o.push(ctx, kind, snapshot, records)
	if res.Success {
		o.mu.Lock()
		o.failures = 0
		o.confirmLocked(seq)
		o.appendLogLocked(CommitMessage(kind, snapshot), true)
		o.updateGaugesLocked()
		o.mu.Unlock()
		return res
	}

	op := &Operation{
		ID:         uuid.NewString(),
		Kind:       kind,
		Record:     snapshot,
		Dataset:    records,
		EnqueuedAt: o.now(),
		Attempts:   1,
		LastError:  res.Error,
		seq:        seq,
	}

	o.mu.Lock()
	o.queue = append(o.queue, op)
	o.failures++
	o.appendLogLocked(fmt.Sprintf("Sync failed, queued for retry: %s", res.Error), false)
	o.updateGaugesLocked()
	o.startLoopLocked()
	o.mu.Unlock()

	o.logger.Warn("Sync failed, operation queued",
		zap.String("operation", op.ID),
		zap.String("kind", string(kind)),
		zap.String("error", res.Error))

	return res
}

// ManualRetry resets the failure counter and wakes the retry loop.
func (o *Orchestrator) ManualRetry() RetryResult {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.queue) == 0 {
		return RetryResult{Success: true, Message: "no pending operations"}
	}

	o.failures = 0
	o.updateGaugesLocked()
	if !o.started {
		return RetryResult{
			Success: false,
			Message: fmt.Sprintf("%d pending operations, retry loop is stopped", len(o.queue)),
		}
	}

	o.startLoopLocked()
	select {
	case o.kick <- struct{}{}:
	default:
	}

	o.logger.Info("Manual retry requested", zap.Int("pending", len(o.queue)))
	return RetryResult{Success: true, Message: fmt.Sprintf("Retrying %d pending operations", len(o.queue))}
}

// Status returns a snapshot of the orchestrator state.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()

	st := Status{
		Available:         o.available(),
		Connected:         o.connected && !o.lastCheck.IsZero() && o.now().Sub(o.lastCheck) <= o.cfg.ConnectionTTL,
		PendingOperations: len(o.queue),
		FailedRetries:     o.failures,
		IsRetrying:        o.retrying,
		Error:             o.lastError,
	}
	if !o.lastSync.IsZero() {
		ts := o.lastSync
		st.LastSync = &ts
	}
	return st
}

// Pending returns copies of the queued operations, oldest first.
func (o *Orchestrator) Pending() []Operation {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]Operation, 0, len(o.queue))
	for _, op := range o.queue {
		out = append(out, *op)
	}
	return out
}

// Logs returns the most recent log entries, newest first.
func (o *Orchestrator) Logs() []LogEntry {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]LogEntry, len(o.logs))
	for i, e := range o.logs {
		out[len(o.logs)-1-i] = e
	}
	return out
}

// TestConnection checks that the versioned store is reachable. Concurrent
// callers share one check.
func (o *Orchestrator) TestConnection(ctx context.Context) ConnectionResult {
	if o.store == nil {
		return ConnectionResult{Error: ErrDisabled.Error()}
	}

	v, _, _ := o.sf.Do("ping", func() (interface{}, error) {
		err := o.store.Ping(ctx)

		o.mu.Lock()
		defer o.mu.Unlock()
		o.lastCheck = o.now()
		o.connected = err == nil
		if err != nil {
			o.lastError = err.Error()
			return ConnectionResult{Error: err.Error()}, nil
		}
		return ConnectionResult{Connected: true}, nil
	})
	return v.(ConnectionResult)
}

// NextDelay returns how long the retry loop waits before its next attempt.
func (o *Orchestrator) NextDelay() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.delayLocked()
}

func (o *Orchestrator) delayLocked() time.Duration {
	if o.failures < o.cfg.FailureThreshold {
		return o.cfg.ShortDelay
	}
	return o.cfg.LongDelay
}

func (o *Orchestrator) available() bool {
	return o.cfg.Enabled && o.store != nil
}

// push writes the dataset over whatever revision is current.
func (o *Orchestrator) push(ctx context.Context, kind Kind, record *dataset.Record, records []dataset.Record) Result {
	data, err := dataset.Encode(records)
	if err != nil {
		return o.recordPush(ctx, failed(err))
	}

	revision := ""
	current, err := o.store.Get(ctx, o.cfg.DataPath)
	switch {
	case err == nil:
		revision = current.Revision
	case errors.Is(err, versionstore.ErrNotFound):
	default:
		return o.recordPush(ctx, failed(fmt.Errorf("failed to read current revision: %w", err)))
	}

	_, err = o.store.Put(ctx, o.cfg.DataPath, data, versionstore.PutOptions{
		Message:  CommitMessage(kind, record),
		Revision: revision,
		Metadata: map[string]string{versionstore.MetaRecordCount: strconv.Itoa(len(records))},
	})
	if err != nil {
		return o.recordPush(ctx, failed(fmt.Errorf("failed to write dataset: %w", err)))
	}
	return o.recordPush(ctx, Result{Success: true})
}

func (o *Orchestrator) recordPush(ctx context.Context, res Result) Result {
	if !res.Success && ctx.Err() != nil {
		return res
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	now := o.now()
	o.lastCheck = now
	o.connected = res.Success
	if res.Success {
		o.lastSync = now
		o.lastError = ""
		metrics.SyncPushTotal.WithLabelValues("success").Inc()
	} else {
		o.lastError = res.Error
		metrics.SyncPushTotal.WithLabelValues("failure").Inc()
	}
	return res
}

// startLoopLocked launches the retry loop if it is allowed and not running.
func (o *Orchestrator) startLoopLocked() {
	if !o.started || o.retrying || len(o.queue) == 0 {
		return
	}
	o.retrying = true
	o.wg.Add(1)
	go o.loop(o.ctx)
}

func (o *Orchestrator) loop(ctx context.Context) {
	defer o.wg.Done()
	o.logger.Debug("Retry loop started")

	for {
		o.mu.Lock()
		if len(o.queue) == 0 {
			o.retrying = false
			select {
			case <-o.kick:
			default:
			}
			o.mu.Unlock()
			o.logger.Debug("Retry loop finished, queue empty")
			return
		}
		delay := o.delayLocked()
		o.mu.Unlock()

		select {
		case <-ctx.Done():
			o.mu.Lock()
			o.retrying = false
			o.mu.Unlock()
			return
		case <-o.after(delay):
		case <-o.kick:
		}

		o.pushMu.Lock()
		o.mu.Lock()
		if len(o.queue) == 0 {
			o.mu.Unlock()
			o.pushMu.Unlock()
			continue
		}
		op := o.queue[0]
		o.mu.Unlock()

		res := o.push(ctx, op.Kind, op.Record, op.Dataset)

		o.mu.Lock()
		if !res.Success && ctx.Err() != nil {
			// Interrupted by Stop: the attempt does not count.
			o.retrying = false
			o.mu.Unlock()
			o.pushMu.Unlock()
			return
		}
		o.removeLocked(op)
		op.Attempts++
		if res.Success {
			o.failures = 0
			o.confirmLocked(op.seq)
			o.appendLogLocked(fmt.Sprintf("Retry succeeded: %s", CommitMessage(op.Kind, op.Record)), true)
			o.logger.Info("Queued sync succeeded",
				zap.String("operation", op.ID),
				zap.Int("attempts", op.Attempts))
		} else {
			o.failures++
			op.LastError = res.Error
			if op.Attempts >= o.cfg.MaxAttempts {
				metrics.SyncAbandonedTotal.Inc()
				o.appendLogLocked(fmt.Sprintf("Sync abandoned after %d attempts: %s", op.Attempts, res.Error), false)
				o.logger.Error("Sync operation abandoned, remote copy is stale",
					zap.String("operation", op.ID),
					zap.String("kind", string(op.Kind)),
					zap.Int("attempts", op.Attempts),
					zap.String("error", res.Error))
			} else {
				o.queue = append(o.queue, op)
				o.appendLogLocked(fmt.Sprintf("Retry %d failed: %s", op.Attempts, res.Error), false)
				o.logger.Warn("Queued sync failed",
					zap.String("operation", op.ID),
					zap.Int("attempts", op.Attempts),
					zap.String("error", res.Error))
			}
		}
		o.updateGaugesLocked()
		o.mu.Unlock()
		o.pushMu.Unlock()
	}
}

// confirmLocked records that the snapshot numbered seq reached the store and
// drops queued snapshots older than it.
func (o *Orchestrator) confirmLocked(seq uint64) {
	if seq > o.confirmed {
		o.confirmed = seq
	}
	kept := o.queue[:0]
	for _, op := range o.queue {
		if op.seq > o.confirmed {
			kept = append(kept, op)
			continue
		}
		o.logger.Info("Dropping queued sync superseded by a newer push",
			zap.String("operation", op.ID),
			zap.Int("attempts", op.Attempts))
	}
	for i := len(kept); i < len(o.queue); i++ {
		o.queue[i] = nil
	}
	o.queue = kept
}

func (o *Orchestrator) removeLocked(target *Operation) {
	for i, op := range o.queue {
		if op == target {
			o.queue = append(o.queue[:i], o.queue[i+1:]...)
			return
		}
	}
}

func (o *Orchestrator) appendLogLocked(msg string, success bool) {
	o.logs = append(o.logs, LogEntry{Timestamp: o.now(), Message: msg, Success: success})
	if extra := len(o.logs) - o.cfg.LogSize; extra > 0 {
		o.logs = append([]LogEntry(nil), o.logs[extra:]...)
	}
}

func (o *Orchestrator) updateGaugesLocked() {
	metrics.SyncQueueDepth.Set(float64(len(o.queue)))
	metrics.SyncFailureCount.Set(float64(o.failures))
}
