// Package jobs runs the background side of the service: the nightly
// retention sweeps and their queue plumbing.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRetentionSoftSweep hides aged completed production orders.
	TaskRetentionSoftSweep = "retention:soft_sweep"
	// TaskRetentionDeepSweep permanently purges aged orders and orphaned
	// pedidos.
	TaskRetentionDeepSweep = "retention:deep_sweep"
)

// SweepPayload parametrizes both sweeps.
type SweepPayload struct {
	Days int `json:"days"`
}

// NewSoftSweepTask constructs the soft sweep task.
func NewSoftSweepTask(days int) (*asynq.Task, error) {
	data, err := json.Marshal(SweepPayload{Days: days})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRetentionSoftSweep, data), nil
}

// NewDeepSweepTask constructs the deep sweep task.
func NewDeepSweepTask(days int) (*asynq.Task, error) {
	data, err := json.Marshal(SweepPayload{Days: days})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRetentionDeepSweep, data), nil
}
