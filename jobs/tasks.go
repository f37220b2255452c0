package jobs

import (
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrity is the task type for the inventory ledger
	// integrity scan.
	TaskLedgerIntegrity = "ledger:integrity"

	// LedgerIntegrityCron runs the scan nightly at 03:00 UTC.
	LedgerIntegrityCron = "0 3 * * *"
)

// NewLedgerIntegrityTask constructs the integrity scan task. The scan takes
// no parameters; it always covers the whole ledger.
func NewLedgerIntegrityTask() *asynq.Task {
	return asynq.NewTask(TaskLedgerIntegrity, nil, asynq.Queue(QueueDefault))
}
