package reconcile

import (
	"context"

	"heritage/core/backup"
	"heritage/core/dataset"
)

// Status is the outcome for one record.
type Status string

const (
	// StatusNoChange means the stored association is already correct.
	StatusNoChange Status = "no_change"
	// StatusWouldUpdate means a dry run found a stale association.
	StatusWouldUpdate Status = "would_update"
	// StatusUpdated means the association was rewritten.
	StatusUpdated Status = "updated"
	// StatusSkipped means the record has no birth year.
	StatusSkipped Status = "skipped"
)

// Options controls a reconciliation pass.
type Options struct {
	// DryRun reports changes without writing them.
	DryRun bool
}

// RecordResult is the per-record line of a Report.
type RecordResult struct {
	ExternalID string   `json:"externalId"`
	Name       string   `json:"name,omitempty"`
	Status     Status   `json:"status"`
	Previous   []string `json:"previous,omitempty"`
	Computed   []string `json:"computed,omitempty"`
}

// Report is the result of a reconciliation pass.
type Report struct {
	// Updated counts records whose association differs, in either mode.
	Updated int `json:"updated"`
	// Processed counts records that were evaluated (skipped excluded).
	Processed int `json:"processed"`
	// Total is the dataset size.
	Total int `json:"total"`
	// DryRun echoes the option the pass ran with.
	DryRun bool `json:"dryRun"`
	// Results holds one entry per record, in dataset order.
	Results []RecordResult `json:"results"`
	// Message is a human-readable summary.
	Message string `json:"message"`
	// Backup names the snapshot taken before applying, if any.
	Backup string `json:"backup,omitempty"`
}

// Source is the record store the runner reads from and writes back to.
type Source interface {
	// Records returns the full dataset.
	Records(ctx context.Context) ([]dataset.Record, error)
	// Intervals returns the reign reference list.
	Intervals(ctx context.Context) ([]dataset.Interval, error)
	// SetAssociation stores the derived association of one record.
	SetAssociation(ctx context.Context, externalID string, ids []string) error
}

// BatchWriter is implemented by sources that can store many associations
// at once. The runner prefers it over per-record SetAssociation calls.
type BatchWriter interface {
	SetAssociations(ctx context.Context, changes map[string][]string) error
}

// Snapshotter takes the pre-apply backup.
type Snapshotter interface {
	CreateBackup(ctx context.Context, records []dataset.Record, trigger backup.Trigger) (backup.Metadata, error)
}
