package replication

import (
	"fmt"
	"time"

	"heritage/core/dataset"
)

// Kind names the mutation that triggered a sync.
type Kind string

const (
	KindCreate Kind = "create"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
	KindBulk   Kind = "bulk"
)

// ParseKind validates a kind string.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindCreate, KindUpdate, KindDelete, KindBulk:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sync kind %q", s)
	}
}

// Result is the outcome of a push.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func failed(err error) Result {
	return Result{Error: err.Error()}
}

// Operation is a queued push waiting for a retry.
type Operation struct {
	ID         string           `json:"id"`
	Kind       Kind             `json:"kind"`
	Record     *dataset.Record  `json:"record,omitempty"`
	Dataset    []dataset.Record `json:"-"`
	EnqueuedAt time.Time        `json:"enqueuedAt"`
	Attempts   int              `json:"attempts"`
	LastError  string           `json:"lastError,omitempty"`

	seq uint64
}

// Status is a read-only snapshot of the orchestrator.
type Status struct {
	Available         bool       `json:"available"`
	Connected         bool       `json:"connected"`
	LastSync          *time.Time `json:"lastSync"`
	PendingOperations int        `json:"pendingOperations"`
	FailedRetries     int        `json:"failedRetries"`
	IsRetrying        bool       `json:"isRetrying"`
	Error             string     `json:"error,omitempty"`
}

// ConnectionResult is the outcome of TestConnection.
type ConnectionResult struct {
	Connected bool   `json:"connected"`
	Error     string `json:"error,omitempty"`
}

// RetryResult is the outcome of ManualRetry.
type RetryResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// LogEntry is one line of the sync log.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Success   bool      `json:"success"`
}

// Sleeper returns a channel that fires after d.
type Sleeper func(d time.Duration) <-chan time.Time
