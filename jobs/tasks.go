// Package jobs wires the background workload: scheduled snapshot persistence
// and ledger integrity scans, processed through Asynq.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSnapshotPersist captures and persists the warehouse state.
	TaskSnapshotPersist = "snapshot:persist"
	// TaskLedgerIntegrity verifies batches against the transaction ledger.
	TaskLedgerIntegrity = "ledger:integrity"
)

// SnapshotPersistPayload parameterises a snapshot run.
type SnapshotPersistPayload struct {
	Reason string `json:"reason"`
}

// NewSnapshotPersistTask constructs a snapshot persistence task.
func NewSnapshotPersistTask(reason string) (*asynq.Task, error) {
	data, err := json.Marshal(SnapshotPersistPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSnapshotPersist, data), nil
}

// LedgerIntegrityPayload parameterises an integrity scan.
type LedgerIntegrityPayload struct {
	Reason string `json:"reason"`
}

// NewLedgerIntegrityTask constructs a ledger integrity task.
func NewLedgerIntegrityTask(reason string) (*asynq.Task, error) {
	data, err := json.Marshal(LedgerIntegrityPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrity, data), nil
}
