package backup

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Trigger indicates what initiated a backup.
type Trigger string

const (
	// TriggerManual is a backup requested by a user.
	TriggerManual Trigger = "manual"
	// TriggerAutoBulk is taken before a bulk reconciliation apply.
	TriggerAutoBulk Trigger = "auto-bulk"
	// TriggerPreRestore is taken before the dataset is replaced by a restore.
	TriggerPreRestore Trigger = "pre-restore"
)

// ErrInvalidFilename is returned for names that do not follow the backup
// filename contract.
var ErrInvalidFilename = errors.New("invalid backup filename")

// ParseTrigger validates a trigger name.
func ParseTrigger(s string) (Trigger, error) {
	switch t := Trigger(s); t {
	case TriggerManual, TriggerAutoBulk, TriggerPreRestore:
		return t, nil
	default:
		return "", fmt.Errorf("unknown backup trigger %q", s)
	}
}

// Metadata describes one backup. It is immutable once written.
type Metadata struct {
	Filename    string    `json:"filename"`
	Timestamp   time.Time `json:"timestamp"`
	Trigger     Trigger   `json:"trigger"`
	RecordCount int       `json:"recordCount"`
	SizeBytes   int64     `json:"sizeBytes"`
}

const timestampLayout = "2006-01-02_15-04-05"

var filenamePattern = regexp.MustCompile(`^family-data_(\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2})_(manual|auto-bulk|pre-restore)\.json$`)

// Filename builds the backup filename for a UTC timestamp and trigger.
func Filename(ts time.Time, trigger Trigger) string {
	return fmt.Sprintf("family-data_%s_%s.json", ts.UTC().Format(timestampLayout), trigger)
}

// ParseFilename extracts timestamp and trigger from a backup filename.
func ParseFilename(name string) (time.Time, Trigger, bool) {
	m := filenamePattern.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, "", false
	}
	ts, err := time.ParseInLocation(timestampLayout, m[1], time.UTC)
	if err != nil {
		return time.Time{}, "", false
	}
	return ts, Trigger(m[2]), true
}
