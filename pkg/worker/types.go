package worker

import "time"

// Status represents the current state of the worker pool
type Status string

const (
	// StatusIdle indicates the pool is ready but not processing
	StatusIdle Status = "idle"

	// StatusProcessing indicates the pool is actively processing tasks
	StatusProcessing Status = "processing"

	// StatusStopped indicates the pool has been stopped
	StatusStopped Status = "stopped"
)

// Stats provides runtime statistics about the worker pool
type Stats struct {
	// ActiveWorkers is the number of workers currently processing tasks
	ActiveWorkers int `json:"active_workers" yaml:"active_workers"`

	// QueuedTasks is the number of tasks waiting to be processed
	QueuedTasks int `json:"queued_tasks" yaml:"queued_tasks"`

	// CompletedTasks is the number of tasks that finished without error
	CompletedTasks int `json:"completed_tasks" yaml:"completed_tasks"`

	// FailedTasks is the number of tasks that returned an error
	FailedTasks int `json:"failed_tasks" yaml:"failed_tasks"`

	// Status is the current state of the pool
	Status Status `json:"status" yaml:"status"`

	// Uptime is how long the pool has been running
	Uptime time.Duration `json:"uptime" yaml:"uptime"`
}

// Done reports the number of tasks that have finished, successfully or not.
func (s Stats) Done() int {
	return s.CompletedTasks + s.FailedTasks
}
