package queue

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrQueueFull is returned when the in-process buffer cannot take another job.
var ErrQueueFull = errors.New("queue full")

// MemoryQueue is an in-process JobQueue used when Redis is not configured.
type MemoryQueue struct {
	jobs   chan *Job
	logger *zap.Logger

	mu  sync.Mutex
	dlq []Job
}

// NewMemoryQueue creates a queue that buffers up to size jobs.
func NewMemoryQueue(size int, logger *zap.Logger) *MemoryQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	if size <= 0 {
		size = 64
	}
	return &MemoryQueue{jobs: make(chan *Job, size), logger: logger}
}

// EnqueueBlastDelivery enqueues a blast delivery job.
func (q *MemoryQueue) EnqueueBlastDelivery(ctx context.Context, payload BlastDeliveryPayload) (*Job, error) {
	job, err := newJob(JobTypeBlastDelivery, payload)
	if err != nil {
		return nil, err
	}
	if err := q.push(job); err != nil {
		return nil, err
	}
	q.logger.Debug("enqueued blast delivery job", zap.String("job_id", job.ID), zap.String("blast_id", payload.BlastID))
	return job, nil
}

func (q *MemoryQueue) push(job *Job) error {
	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Dequeue blocks until a job is available or ctx is done.
func (q *MemoryQueue) Dequeue(ctx context.Context) (*Job, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case job := <-q.jobs:
		return job, nil
	}
}

// Retry re-enqueues a job with incremented attempt. If attempt >= MaxRetries, the job is kept
// in the dead-letter list instead.
func (q *MemoryQueue) Retry(ctx context.Context, job *Job) error {
	job.Attempt++
	if job.Attempt >= MaxRetries {
		q.mu.Lock()
		q.dlq = append(q.dlq, *job)
		q.mu.Unlock()
		q.logger.Warn("job moved to DLQ", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
		return nil
	}
	if err := q.push(job); err != nil {
		return err
	}
	q.logger.Info("job retried", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
	return nil
}

// DeadLetters returns the jobs that exhausted their retries.
func (q *MemoryQueue) DeadLetters() []Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Job(nil), q.dlq...)
}

// Len returns the number of buffered jobs.
func (q *MemoryQueue) Len() int {
	return len(q.jobs)
}
