// Package jobs runs background maintenance for the auth layer.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSessionsPurge drops expired and orphaned session audit rows.
	TaskSessionsPurge = "sessions:purge"
)

// SessionsPurgePayload parameterises a purge run.
type SessionsPurgePayload struct {
	// Before purges rows expiring before this instant; zero means now.
	Before time.Time `json:"before"`
}

// NewSessionsPurgeTask constructs an Asynq task.
func NewSessionsPurgeTask(payload SessionsPurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionsPurge, data), nil
}
