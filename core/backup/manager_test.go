package backup

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"heritage/core/dataset"
	"heritage/core/versionstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// tickingClock advances one minute per call.
func tickingClock(start time.Time) func() time.Time {
	cur := start
	return func() time.Time {
		t := cur
		cur = cur.Add(time.Minute)
		return t
	}
}

func newTestManager(store versionstore.Store) *Manager {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return NewManager(store, DefaultConfig(), zap.NewNop(), WithClock(tickingClock(start)))
}

func sampleRecords(n int) []dataset.Record {
	out := make([]dataset.Record, n)
	for i := range out {
		out[i] = dataset.Record{ExternalID: strings.Repeat("1.", i) + "1", Born: dataset.Year(1700 + i)}
	}
	return out
}

func byTrigger(list []Metadata, trigger Trigger) []Metadata {
	var out []Metadata
	for _, b := range list {
		if b.Trigger == trigger {
			out = append(out, b)
		}
	}
	return out
}

func TestFilename_RoundTrip(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	name := Filename(ts, TriggerAutoBulk)
	assert.Equal(t, "family-data_2024-01-02_03-04-05_auto-bulk.json", name)

	parsed, trigger, ok := ParseFilename(name)
	require.True(t, ok)
	assert.True(t, ts.Equal(parsed))
	assert.Equal(t, TriggerAutoBulk, trigger)

	for _, bad := range []string{
		"family-data_2024-01-02_manual.json",
		"family-data_2024-01-02_03-04-05_nightly.json",
		"notes.txt",
		"../family-data_2024-01-02_03-04-05_manual.json",
	} {
		_, _, ok := ParseFilename(bad)
		assert.False(t, ok, bad)
	}
}

func TestCreateBackup_Metadata(t *testing.T) {
	store := versionstore.NewMemory()
	m := newTestManager(store)

	meta, err := m.CreateBackup(context.Background(), sampleRecords(3), TriggerManual)
	require.NoError(t, err)

	assert.Equal(t, "family-data_2024-05-01_12-00-00_manual.json", meta.Filename)
	assert.Equal(t, 3, meta.RecordCount)
	assert.Greater(t, meta.SizeBytes, int64(0))

	content, err := store.Get(context.Background(), "backups/"+meta.Filename)
	require.NoError(t, err)
	assert.Equal(t, "Backup (manual): 3 records", content.Message)

	list, err := m.ListBackups(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 3, list[0].RecordCount)
	assert.Equal(t, meta.SizeBytes, list[0].SizeBytes)
}

func TestCreateBackup_UnknownTrigger(t *testing.T) {
	m := newTestManager(versionstore.NewMemory())
	_, err := m.CreateBackup(context.Background(), nil, Trigger("nightly"))
	assert.Error(t, err)
}

func TestRetention_AutoBulkKeepsFiveNewest(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(versionstore.NewMemory())

	var created []Metadata
	for i := 0; i < 7; i++ {
		meta, err := m.CreateBackup(ctx, sampleRecords(i+1), TriggerAutoBulk)
		require.NoError(t, err)
		created = append(created, meta)
	}

	list, err := m.ListBackups(ctx)
	require.NoError(t, err)
	auto := byTrigger(list, TriggerAutoBulk)
	require.Len(t, auto, 5)

	// newest first: created[6] ... created[2]
	for i, b := range auto {
		assert.Equal(t, created[6-i].Filename, b.Filename)
	}
}

func TestRetention_ManualNeverPruned(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(versionstore.NewMemory())

	for i := 0; i < 7; i++ {
		_, err := m.CreateBackup(ctx, sampleRecords(1), TriggerManual)
		require.NoError(t, err)
	}
	// An auto-bulk cleanup must not touch manual backups either.
	_, err := m.CreateBackup(ctx, sampleRecords(1), TriggerAutoBulk)
	require.NoError(t, err)

	list, err := m.ListBackups(ctx)
	require.NoError(t, err)
	assert.Len(t, byTrigger(list, TriggerManual), 7)
}

func TestRetention_PreRestoreKeepsThree(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(versionstore.NewMemory())

	for i := 0; i < 5; i++ {
		_, err := m.CreateBackup(ctx, sampleRecords(1), TriggerPreRestore)
		require.NoError(t, err)
	}

	list, err := m.ListBackups(ctx)
	require.NoError(t, err)
	assert.Len(t, byTrigger(list, TriggerPreRestore), 3)
}

func TestListBackups_SkipsMalformed(t *testing.T) {
	ctx := context.Background()
	store := versionstore.NewMemory()
	m := newTestManager(store)

	_, err := m.CreateBackup(ctx, sampleRecords(2), TriggerManual)
	require.NoError(t, err)
	_, err = m.CreateBackup(ctx, sampleRecords(2), TriggerPreRestore)
	require.NoError(t, err)
	_, _ = store.Put(ctx, "backups/README.md", []byte("hi"), versionstore.PutOptions{})
	_, _ = store.Put(ctx, "backups/family-data_latest.json", []byte("[]"), versionstore.PutOptions{})

	list, err := m.ListBackups(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, TriggerPreRestore, list[0].Trigger)
	assert.True(t, list[0].Timestamp.After(list[1].Timestamp))
}

func TestGetBackupContent(t *testing.T) {
	ctx := context.Background()
	store := versionstore.NewMemory()
	m := newTestManager(store)

	meta, err := m.CreateBackup(ctx, sampleRecords(2), TriggerManual)
	require.NoError(t, err)

	records, err := m.GetBackupContent(ctx, meta.Filename)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	_, err = m.GetBackupContent(ctx, "family-data_1999-01-01_00-00-00_manual.json")
	assert.ErrorIs(t, err, versionstore.ErrNotFound)

	_, err = m.GetBackupContent(ctx, "../secrets.json")
	assert.ErrorIs(t, err, ErrInvalidFilename)

	broken := "family-data_1999-01-01_00-00-00_pre-restore.json"
	_, _ = store.Put(ctx, "backups/"+broken, []byte("{not json"), versionstore.PutOptions{})
	_, err = m.GetBackupContent(ctx, broken)
	assert.Error(t, err)
}

// flakyDeleteStore fails deletes for one path.
type flakyDeleteStore struct {
	*versionstore.Memory
	failPath string
}

func (s *flakyDeleteStore) Delete(ctx context.Context, p, revision string) error {
	if p == s.failPath {
		return errors.New("permission denied")
	}
	return s.Memory.Delete(ctx, p, revision)
}

func TestCleanup_ContinuesAfterDeleteFailure(t *testing.T) {
	ctx := context.Background()
	store := &flakyDeleteStore{Memory: versionstore.NewMemory()}
	m := newTestManager(store)
	m.cfg.KeepAutoBulk = 100

	var created []Metadata
	for i := 0; i < 4; i++ {
		meta, err := m.CreateBackup(ctx, sampleRecords(1), TriggerAutoBulk)
		require.NoError(t, err)
		created = append(created, meta)
	}

	// Oldest two are expired; the very oldest refuses to go.
	store.failPath = "backups/" + created[0].Filename
	m.cfg.KeepAutoBulk = 2

	deleted, err := m.CleanupOldBackups(ctx, TriggerAutoBulk)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	list, err := m.ListBackups(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestDeleteBackup(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(versionstore.NewMemory())

	meta, err := m.CreateBackup(ctx, sampleRecords(1), TriggerManual)
	require.NoError(t, err)

	require.NoError(t, m.DeleteBackup(ctx, meta.Filename))
	list, err := m.ListBackups(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, m.DeleteBackup(ctx, "nope"), ErrInvalidFilename)
}
