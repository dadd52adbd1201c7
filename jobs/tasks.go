// Package jobs hosts the background worker: the Asynq server, the scheduler
// and the task implementations.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskGraphIntegrityScan is the nightly permission-graph integrity scan.
	TaskGraphIntegrityScan = "rbac:integrity_scan"
)

// GraphIntegrityPayload configures one integrity scan run.
type GraphIntegrityPayload struct {
	// ReportOnly suppresses the non-zero exit when dangling rows are found.
	ReportOnly bool `json:"report_only"`
}

// NewGraphIntegrityTask constructs the scan task.
func NewGraphIntegrityTask(payload GraphIntegrityPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGraphIntegrityScan, data), nil
}
