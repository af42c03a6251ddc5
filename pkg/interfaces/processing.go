package interfaces

import (
	"context"
	"time"
)

// Job is one unit of work submitted to a WorkerPool.
type Job interface {
	Execute(ctx context.Context) (interface{}, error)
	GetPriority() int
	GetID() string
	GetTimeout() time.Duration
}

// WorkerPool runs submitted Jobs across a fixed number of goroutines.
type WorkerPool interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Submit(job Job) error
	GetStats() *WorkerPoolStats
	Resize(newSize int) error
}

// WorkerPoolStats reports worker pool utilization.
type WorkerPoolStats struct {
	PoolSize       int
	ActiveWorkers  int
	QueuedJobs     int
	CompletedJobs  int64
	FailedJobs     int64
	AverageLatency time.Duration
	Utilization    float64
}
