package replication

import (
	"fmt"

	"heritage/core/dataset"
)

// CommitMessage describes a sync for the versioned store's history.
func CommitMessage(kind Kind, record *dataset.Record) string {
	label := describe(record)

	switch kind {
	case KindCreate:
		return fmt.Sprintf("Add family member: %s", label)
	case KindUpdate:
		return fmt.Sprintf("Update family member: %s", label)
	case KindDelete:
		return fmt.Sprintf("Remove family member: %s", label)
	case KindBulk:
		if label != "" {
			return fmt.Sprintf("Bulk update: %s", label)
		}
		return "Bulk update of family data"
	default:
		return fmt.Sprintf("Sync family data (%s)", kind)
	}
}

func describe(record *dataset.Record) string {
	switch {
	case record == nil:
		return ""
	case record.Name != "" && record.ExternalID != "":
		return fmt.Sprintf("%s (%s)", record.Name, record.ExternalID)
	default:
		return record.Label()
	}
}
