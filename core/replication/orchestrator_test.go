package replication

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"heritage/core/dataset"
	"heritage/core/versionstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// flakyStore fails every Put while down is set.
type flakyStore struct {
	*versionstore.Memory
	mu   sync.Mutex
	down bool
	puts int
}

func newFlakyStore() *flakyStore {
	return &flakyStore{Memory: versionstore.NewMemory()}
}

func (s *flakyStore) setDown(down bool) {
	s.mu.Lock()
	s.down = down
	s.mu.Unlock()
}

func (s *flakyStore) Put(ctx context.Context, p string, data []byte, opts versionstore.PutOptions) (string, error) {
	s.mu.Lock()
	s.puts++
	down := s.down
	s.mu.Unlock()
	if down {
		return "", errors.New("connection refused")
	}
	return s.Memory.Put(ctx, p, data, opts)
}

func (s *flakyStore) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return errors.New("connection refused")
	}
	return nil
}

// stallingStore blocks every Put while stall is set until the caller's
// context ends.
type stallingStore struct {
	*flakyStore
	stall   bool
	entered chan struct{}
}

func newStallingStore() *stallingStore {
	return &stallingStore{flakyStore: newFlakyStore(), entered: make(chan struct{}, 1)}
}

func (s *stallingStore) setStall(stall bool) {
	s.mu.Lock()
	s.stall = stall
	s.mu.Unlock()
}

func (s *stallingStore) Put(ctx context.Context, p string, data []byte, opts versionstore.PutOptions) (string, error) {
	s.mu.Lock()
	stall := s.stall
	s.mu.Unlock()
	if !stall {
		return s.flakyStore.Put(ctx, p, data, opts)
	}
	s.entered <- struct{}{}
	<-ctx.Done()
	return "", ctx.Err()
}

// stepSleeper lets a test observe each requested wait and release it.
type stepSleeper struct {
	delays  chan time.Duration
	release chan time.Time
}

func newStepSleeper() *stepSleeper {
	return &stepSleeper{delays: make(chan time.Duration, 16), release: make(chan time.Time)}
}

func (s *stepSleeper) after(d time.Duration) <-chan time.Time {
	s.delays <- d
	return s.release
}

func (s *stepSleeper) next(t *testing.T) time.Duration {
	t.Helper()
	select {
	case d := <-s.delays:
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("retry loop did not wait")
		return 0
	}
}

func (s *stepSleeper) fire() {
	s.release <- time.Now()
}

func sampleDataset() (*dataset.Record, []dataset.Record) {
	records := []dataset.Record{
		{ExternalID: "1", Name: "Anders", Born: dataset.Year(1545)},
		{ExternalID: "1.2", Name: "Anna", Born: dataset.Year(1570), Died: dataset.Year(1630)},
	}
	return &records[1], records
}

func newTestOrchestrator(t *testing.T, store versionstore.Store, s *stepSleeper, opts ...Option) *Orchestrator {
	t.Helper()
	opts = append([]Option{WithSleeper(s.after)}, opts...)
	o := New(DefaultConfig(), store, zap.NewNop(), opts...)
	o.Start(context.Background())
	t.Cleanup(o.Stop)
	return o
}

func waitIdle(t *testing.T, o *Orchestrator) {
	t.Helper()
	require.Eventually(t, func() bool {
		st := o.Status()
		return !st.IsRetrying && st.PendingOperations == 0
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSync_ImmediateSuccess(t *testing.T) {
	store := newFlakyStore()
	o := newTestOrchestrator(t, store, newStepSleeper())
	rec, records := sampleDataset()

	res := o.Sync(context.Background(), KindCreate, rec, records)
	require.True(t, res.Success)

	content, err := store.Get(context.Background(), "data/family.json")
	require.NoError(t, err)
	assert.Equal(t, "Add family member: Anna (1.2)", content.Message)

	decoded, err := dataset.Decode(content.Data)
	require.NoError(t, err)
	assert.Len(t, decoded, 2)

	st := o.Status()
	assert.True(t, st.Available)
	assert.True(t, st.Connected)
	assert.NotNil(t, st.LastSync)
	assert.Zero(t, st.PendingOperations)
}

func TestSync_OverwritesCurrentRevision(t *testing.T) {
	store := newFlakyStore()
	o := newTestOrchestrator(t, store, newStepSleeper())
	rec, records := sampleDataset()

	require.True(t, o.Sync(context.Background(), KindCreate, rec, records).Success)
	require.True(t, o.Sync(context.Background(), KindUpdate, rec, records[:1]).Success)

	content, err := store.Get(context.Background(), "data/family.json")
	require.NoError(t, err)
	assert.Equal(t, "Update family member: Anna (1.2)", content.Message)
}

func TestSync_FailureQueuesAndTiersBackoff(t *testing.T) {
	store := newFlakyStore()
	store.setDown(true)
	s := newStepSleeper()
	o := newTestOrchestrator(t, store, s)
	rec, records := sampleDataset()

	res := o.Sync(context.Background(), KindUpdate, rec, records)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "connection refused")

	assert.Equal(t, 5*time.Minute, s.next(t))
	assert.Equal(t, 1, o.Status().PendingOperations)
	s.fire()

	assert.Equal(t, 5*time.Minute, s.next(t))
	s.fire()

	// Third consecutive failure switches to the long tier.
	assert.Equal(t, 60*time.Minute, s.next(t))
	assert.Equal(t, 3, o.Status().FailedRetries)

	store.setDown(false)
	s.fire()
	waitIdle(t, o)

	st := o.Status()
	assert.Zero(t, st.FailedRetries)
	assert.Equal(t, 5*time.Minute, o.NextDelay())

	store.setDown(true)
	o.Sync(context.Background(), KindUpdate, rec, records)
	assert.Equal(t, 5*time.Minute, s.next(t))
}

func TestSync_AbandonsAfterMaxAttempts(t *testing.T) {
	store := newFlakyStore()
	store.setDown(true)
	s := newStepSleeper()
	o := newTestOrchestrator(t, store, s)
	rec, records := sampleDataset()

	o.Sync(context.Background(), KindDelete, rec, records)

	want := []time.Duration{5 * time.Minute, 5 * time.Minute, 60 * time.Minute, 60 * time.Minute}
	for _, d := range want {
		assert.Equal(t, d, s.next(t))
		s.fire()
	}
	waitIdle(t, o)

	st := o.Status()
	assert.Zero(t, st.PendingOperations)
	assert.Equal(t, 5, st.FailedRetries)
	assert.Contains(t, st.Error, "connection refused")
	assert.Equal(t, 5, store.puts)

	logs := o.Logs()
	require.NotEmpty(t, logs)
	assert.Contains(t, logs[0].Message, "abandoned after 5 attempts")
	assert.False(t, logs[0].Success)
}

func TestStop_InterruptedRetryKeepsOperation(t *testing.T) {
	store := newStallingStore()
	store.setDown(true)
	s := newStepSleeper()
	cfg := DefaultConfig()
	cfg.MaxAttempts = 2
	o := New(cfg, store, zap.NewNop(), WithSleeper(s.after))
	o.Start(context.Background())
	rec, records := sampleDataset()

	o.Sync(context.Background(), KindUpdate, rec, records)
	assert.Equal(t, 5*time.Minute, s.next(t))

	store.setStall(true)
	s.fire()
	select {
	case <-store.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("retry push did not start")
	}
	o.Stop()

	st := o.Status()
	assert.Equal(t, 1, st.PendingOperations)
	assert.Equal(t, 1, st.FailedRetries)
	assert.False(t, st.IsRetrying)
	assert.Contains(t, st.Error, "connection refused")

	pending := o.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].Attempts)
	for _, entry := range o.Logs() {
		assert.NotContains(t, entry.Message, "abandoned")
	}

	store.setStall(false)
	store.setDown(false)
	o.Start(context.Background())
	defer o.Stop()

	assert.Equal(t, 5*time.Minute, s.next(t))
	s.fire()
	waitIdle(t, o)
	assert.Zero(t, o.Status().FailedRetries)
}

func TestSync_NewerPushDropsOlderQueuedSnapshots(t *testing.T) {
	store := newFlakyStore()
	store.setDown(true)
	s := newStepSleeper()
	o := newTestOrchestrator(t, store, s)
	rec, records := sampleDataset()

	o.Sync(context.Background(), KindCreate, rec, records)
	o.Sync(context.Background(), KindUpdate, rec, records)
	assert.Equal(t, 5*time.Minute, s.next(t))
	require.Equal(t, 2, o.Status().PendingOperations)

	store.setDown(false)
	require.True(t, o.Sync(context.Background(), KindDelete, rec, records[:1]).Success)
	assert.Zero(t, o.Status().PendingOperations)

	s.fire()
	waitIdle(t, o)

	content, err := store.Get(context.Background(), "data/family.json")
	require.NoError(t, err)
	assert.Equal(t, "Remove family member: Anna (1.2)", content.Message)
	assert.Equal(t, 3, store.puts)
}

func TestSync_QueuedBeforeStart(t *testing.T) {
	store := newFlakyStore()
	store.setDown(true)
	s := newStepSleeper()
	o := New(DefaultConfig(), store, zap.NewNop(), WithSleeper(s.after))
	rec, records := sampleDataset()

	o.Sync(context.Background(), KindCreate, rec, records)
	st := o.Status()
	assert.Equal(t, 1, st.PendingOperations)
	assert.False(t, st.IsRetrying)

	store.setDown(false)
	o.Start(context.Background())
	defer o.Stop()

	assert.Equal(t, 5*time.Minute, s.next(t))
	s.fire()
	waitIdle(t, o)
}

func TestSync_SnapshotIsolatedFromCaller(t *testing.T) {
	store := newFlakyStore()
	store.setDown(true)
	o := New(DefaultConfig(), store, zap.NewNop(), WithSleeper(newStepSleeper().after))
	rec, records := sampleDataset()

	o.Sync(context.Background(), KindUpdate, rec, records)
	records[1].Name = "changed"

	pending := o.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "Anna", pending[0].Record.Name)
	assert.Equal(t, "Anna", pending[0].Dataset[1].Name)
	assert.Equal(t, 1, pending[0].Attempts)
	assert.NotEmpty(t, pending[0].ID)
}

func TestSync_Disabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false
	o := New(cfg, newFlakyStore(), zap.NewNop())

	res := o.Sync(context.Background(), KindCreate, nil, nil)
	assert.False(t, res.Success)
	assert.Equal(t, ErrDisabled.Error(), res.Error)
	assert.False(t, o.Status().Available)
	assert.Zero(t, o.Status().PendingOperations)
}

func TestManualRetry_EmptyQueue(t *testing.T) {
	o := newTestOrchestrator(t, newFlakyStore(), newStepSleeper())

	res := o.ManualRetry()
	assert.True(t, res.Success)
	assert.Equal(t, "no pending operations", res.Message)
}

func TestManualRetry_SkipsWaitAndResetsCounter(t *testing.T) {
	store := newFlakyStore()
	store.setDown(true)
	s := newStepSleeper()
	o := newTestOrchestrator(t, store, s)
	rec, records := sampleDataset()

	o.Sync(context.Background(), KindUpdate, rec, records)
	o.Sync(context.Background(), KindUpdate, rec, records)
	s.next(t)
	assert.Equal(t, 2, o.Status().FailedRetries)

	store.setDown(false)
	res := o.ManualRetry()
	assert.True(t, res.Success)
	assert.Equal(t, "Retrying 2 pending operations", res.Message)
	assert.Equal(t, 5*time.Minute, s.next(t))
	s.fire()
	waitIdle(t, o)

	assert.Zero(t, o.Status().FailedRetries)
}

func TestTestConnection_ExpiresAfterTTL(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newFlakyStore()
	o := New(DefaultConfig(), store, zap.NewNop(), WithClock(func() time.Time { return now }))

	assert.False(t, o.Status().Connected)

	res := o.TestConnection(context.Background())
	assert.True(t, res.Connected)
	assert.True(t, o.Status().Connected)

	now = now.Add(11 * time.Minute)
	assert.False(t, o.Status().Connected)

	store.setDown(true)
	res = o.TestConnection(context.Background())
	assert.False(t, res.Connected)
	assert.Equal(t, "connection refused", res.Error)
	assert.Equal(t, "connection refused", o.Status().Error)
}

func TestTestConnection_NoStore(t *testing.T) {
	o := New(DefaultConfig(), nil, zap.NewNop())

	res := o.TestConnection(context.Background())
	assert.False(t, res.Connected)
	assert.False(t, o.Status().Available)
}

func TestLogs_KeepsMostRecent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogSize = 3
	o := New(cfg, newFlakyStore(), zap.NewNop())
	_, records := sampleDataset()

	for i := 0; i < 5; i++ {
		rec := records[0]
		rec.Name = string(rune('A' + i))
		o.Sync(context.Background(), KindUpdate, &rec, records)
	}

	logs := o.Logs()
	require.Len(t, logs, 3)
	assert.Contains(t, logs[0].Message, "E (1)")
	assert.Contains(t, logs[2].Message, "C (1)")
}

func TestCommitMessage(t *testing.T) {
	rec := &dataset.Record{ExternalID: "1.2.3", Name: "Karin"}

	assert.Equal(t, "Add family member: Karin (1.2.3)", CommitMessage(KindCreate, rec))
	assert.Equal(t, "Update family member: Karin (1.2.3)", CommitMessage(KindUpdate, rec))
	assert.Equal(t, "Remove family member: Karin (1.2.3)", CommitMessage(KindDelete, rec))
	assert.Equal(t, "Bulk update of family data", CommitMessage(KindBulk, nil))
	assert.Equal(t, "Add family member: 4.5", CommitMessage(KindCreate, &dataset.Record{ExternalID: "4.5"}))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("bulk")
	require.NoError(t, err)
	assert.Equal(t, KindBulk, k)

	_, err = ParseKind("upsert")
	assert.Error(t, err)
}
