package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"heritage/core/backup"
	"heritage/core/dataset"
	"heritage/core/metrics"
	"heritage/core/versionstore"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memorySource struct {
	records   []dataset.Record
	intervals []dataset.Interval
	writes    int
	failWrite error
}

func (s *memorySource) Records(_ context.Context) ([]dataset.Record, error) {
	return dataset.CloneAll(s.records), nil
}

func (s *memorySource) Intervals(_ context.Context) ([]dataset.Interval, error) {
	return s.intervals, nil
}

func (s *memorySource) SetAssociation(_ context.Context, id string, ids []string) error {
	if s.failWrite != nil {
		return s.failWrite
	}
	for i := range s.records {
		if s.records[i].ExternalID == id {
			s.records[i].Monarchs = append([]string(nil), ids...)
			s.writes++
			return nil
		}
	}
	return errors.New("unknown record")
}

type batchSource struct {
	*memorySource
	batches int
}

func (s *batchSource) SetAssociations(ctx context.Context, changes map[string][]string) error {
	s.batches++
	for id, ids := range changes {
		if err := s.SetAssociation(ctx, id, ids); err != nil {
			return err
		}
	}
	return nil
}

type MockSnapshotter struct {
	mock.Mock
}

func (m *MockSnapshotter) CreateBackup(ctx context.Context, records []dataset.Record, trigger backup.Trigger) (backup.Metadata, error) {
	args := m.Called(ctx, records, trigger)
	return args.Get(0).(backup.Metadata), args.Error(1)
}

func twoRecordSource(t *testing.T) *memorySource {
	return &memorySource{
		intervals: vasaReigns(t),
		records: []dataset.Record{
			{ExternalID: "1", Name: "A", Born: dataset.Year(1545), Died: dataset.Year(1600), Monarchs: []string{"m5", "m4", "m3", "m2", "m1"}},
			{ExternalID: "1.1", Name: "B", Born: dataset.Year(1565), Died: dataset.Year(1570), Monarchs: []string{"m1"}},
		},
	}
}

func TestRun_DryRunReportsWithoutWriting(t *testing.T) {
	src := twoRecordSource(t)
	runner := NewRunner(src, nil, zap.NewNop())

	report, err := runner.Run(context.Background(), Options{DryRun: true})
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 2, report.Total)
	require.Len(t, report.Results, 2)
	assert.Equal(t, StatusNoChange, report.Results[0].Status)
	assert.Equal(t, StatusWouldUpdate, report.Results[1].Status)
	assert.Equal(t, []string{"m2", "m3"}, report.Results[1].Computed)
	assert.Equal(t, []string{"m1"}, report.Results[1].Previous)
	assert.Zero(t, src.writes)
	assert.Equal(t, []string{"m1"}, src.records[1].Monarchs)
}

func TestRun_ApplyMatchesDryRunCounts(t *testing.T) {
	src := twoRecordSource(t)
	snap := new(MockSnapshotter)
	snap.On("CreateBackup", mock.Anything, mock.Anything, backup.TriggerAutoBulk).
		Return(backup.Metadata{Filename: "family-data_2024-01-01_00-00-00_auto-bulk.json"}, nil).Once()
	runner := NewRunner(src, snap, zap.NewNop())

	dry, err := runner.Run(context.Background(), Options{DryRun: true})
	require.NoError(t, err)
	applied, err := runner.Run(context.Background(), Options{})
	require.NoError(t, err)

	assert.False(t, applied.DryRun)
	assert.Equal(t, dry.Updated, applied.Updated)
	assert.Equal(t, dry.Processed, applied.Processed)
	assert.Equal(t, dry.Total, applied.Total)
	for i := range dry.Results {
		wasChange := dry.Results[i].Status == StatusWouldUpdate
		isChange := applied.Results[i].Status == StatusUpdated
		assert.Equal(t, wasChange, isChange, dry.Results[i].ExternalID)
	}
	assert.Equal(t, "family-data_2024-01-01_00-00-00_auto-bulk.json", applied.Backup)
	assert.Equal(t, []string{"m2", "m3"}, src.records[1].Monarchs)
	snap.AssertExpectations(t)
}

func TestRun_Idempotent(t *testing.T) {
	src := twoRecordSource(t)
	snap := new(MockSnapshotter)
	snap.On("CreateBackup", mock.Anything, mock.Anything, backup.TriggerAutoBulk).
		Return(backup.Metadata{Filename: "x"}, nil).Once()
	runner := NewRunner(src, snap, zap.NewNop())

	first, err := runner.Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Updated)

	second, err := runner.Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.Zero(t, second.Updated)
	assert.Empty(t, second.Backup)
	snap.AssertExpectations(t)
}

func TestRun_SkipsRecordsWithoutBirthYear(t *testing.T) {
	src := twoRecordSource(t)
	src.records = append(src.records, dataset.Record{ExternalID: "2", Name: "Unknown"})
	runner := NewRunner(src, nil, zap.NewNop())

	report, err := runner.Run(context.Background(), Options{DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, StatusSkipped, report.Results[2].Status)
}

func TestRun_BackupFailureFallsBack(t *testing.T) {
	src := twoRecordSource(t)
	snap := new(MockSnapshotter)
	snap.On("CreateBackup", mock.Anything, mock.Anything, backup.TriggerAutoBulk).
		Return(backup.Metadata{}, errors.New("store offline"))

	local := backup.NewManager(versionstore.NewMemory(), backup.DefaultConfig(), zap.NewNop(),
		backup.WithClock(func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }))
	runner := NewRunner(src, snap, zap.NewNop(), WithFallback(local))

	report, err := runner.Run(context.Background(), Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, "family-data_2024-05-01_10-00-00_auto-bulk.json", report.Backup)
	assert.Equal(t, []string{"m2", "m3"}, src.records[1].Monarchs)

	kept, err := local.ListBackups(context.Background())
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}

func TestRun_FallbackBackupCountedSeparately(t *testing.T) {
	src := twoRecordSource(t)
	snap := new(MockSnapshotter)
	snap.On("CreateBackup", mock.Anything, mock.Anything, backup.TriggerAutoBulk).
		Return(backup.Metadata{}, errors.New("store offline"))

	trigger := string(backup.TriggerAutoBulk)
	stored := metrics.BackupCreatedTotal.WithLabelValues(trigger, backup.DestinationStore)
	local := metrics.BackupCreatedTotal.WithLabelValues(trigger, backup.DestinationFallback)
	storedBefore, localBefore := testutil.ToFloat64(stored), testutil.ToFloat64(local)

	report, err := NewRunner(src, snap, zap.NewNop()).Run(context.Background(), Options{})
	require.NoError(t, err)
	require.NotEmpty(t, report.Backup)

	assert.Equal(t, storedBefore, testutil.ToFloat64(stored))
	assert.Equal(t, localBefore+1, testutil.ToFloat64(local))
}

func TestRun_PrefersBatchWriter(t *testing.T) {
	src := &batchSource{memorySource: twoRecordSource(t)}
	runner := NewRunner(src, nil, zap.NewNop())

	_, err := runner.Run(context.Background(), Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, src.batches)
	assert.Equal(t, 1, src.writes)
}

func TestRun_WriteFailure(t *testing.T) {
	src := twoRecordSource(t)
	src.failWrite = errors.New("disk full")
	runner := NewRunner(src, nil, zap.NewNop())

	_, err := runner.Run(context.Background(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestPlan_OrderInsensitiveComparison(t *testing.T) {
	reigns := vasaReigns(t)
	records := []dataset.Record{
		{ExternalID: "1", Born: dataset.Year(1545), Died: dataset.Year(1600), Monarchs: []string{"m3", "m1", "m5", "m2", "m4"}},
	}

	report := Plan(records, reigns)
	assert.Zero(t, report.Updated)
	assert.Equal(t, StatusNoChange, report.Results[0].Status)

	reversed := []dataset.Interval{reigns[4], reigns[3], reigns[2], reigns[1], reigns[0]}
	report = Plan(records, reversed)
	assert.Zero(t, report.Updated)
}

func TestIntervalCache_ReusesWithinTTL(t *testing.T) {
	loads := 0
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewIntervalCache(func(context.Context) ([]dataset.Interval, error) {
		loads++
		return vasaReigns(t), nil
	}, time.Minute)
	cache.now = func() time.Time { return now }

	_, err := cache.Get(context.Background())
	require.NoError(t, err)
	_, err = cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, loads)

	now = now.Add(2 * time.Minute)
	_, err = cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, loads)

	cache.Invalidate()
	_, err = cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, loads)
}

func TestIntervalCache_ZeroTTLAlwaysLoads(t *testing.T) {
	loads := 0
	cache := NewIntervalCache(func(context.Context) ([]dataset.Interval, error) {
		loads++
		return nil, nil
	}, 0)

	for i := 0; i < 3; i++ {
		_, err := cache.Get(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 3, loads)
}
