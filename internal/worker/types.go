package workerpool

import (
	"context"
	"time"
)

// Task is one unit of background work, typically a batch render submitted by
// the API layer.
type Task struct {
	ID  string
	Run func(ctx context.Context) (interface{}, error)
}

type Result struct {
	TaskID   string
	Value    interface{}
	Error    error
	Duration time.Duration
}

type Config struct {
	WorkerCount   int
	TaskQueueSize int
}

type Stats struct {
	WorkerCount    int
	TotalTasks     int64
	CompletedTasks int64
	FailedTasks    int64
	QueueLength    int64
	Uptime         time.Duration
	IsRunning      bool
}
