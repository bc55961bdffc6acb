package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a unit of background work executed by the queue workers.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Options tunes the queue worker pool.
type Options struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
}

// Queue runs jobs asynchronously on a fixed worker pool with retries.
type Queue struct {
	opts   Options
	jobs   chan Job
	logger *zap.Logger

	wg       sync.WaitGroup
	mu       sync.Mutex
	closed   bool
	cancelFn context.CancelFunc
}

// NewQueue builds a queue and starts its workers immediately.
func NewQueue(opts Options, logger *zap.Logger) *Queue {
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 64
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 2 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		opts:     opts,
		jobs:     make(chan Job, opts.BufferSize),
		logger:   logger,
		cancelFn: cancel,
	}

	for i := 0; i < opts.Workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}

	return q
}

// Enqueue submits a job. It returns false when the queue is shut down or the
// buffer is full; callers treat a dropped job as a logged non-fatal event.
func (q *Queue) Enqueue(job Job) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.mu.Unlock()

	select {
	case q.jobs <- job:
		return true
	default:
		q.logger.Warn("job queue full, dropping job", zap.String("job", job.Name()))
		return false
	}
}

// Shutdown stops accepting jobs and waits for in-flight work to finish or the
// context to expire.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancelFn()
		return nil
	case <-ctx.Done():
		q.cancelFn()
		return ctx.Err()
	}
}

func (q *Queue) worker(ctx context.Context, id int) {
	defer q.wg.Done()

	for job := range q.jobs {
		q.runWithRetry(ctx, id, job)
	}
}

func (q *Queue) runWithRetry(ctx context.Context, workerID int, job Job) {
	var err error
	for attempt := 0; attempt <= q.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(q.opts.RetryDelay):
			}
		}

		if err = job.Run(ctx); err == nil {
			return
		}

		q.logger.Warn("job attempt failed",
			zap.String("job", job.Name()),
			zap.Int("worker", workerID),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}

	q.logger.Error("job exhausted retries",
		zap.String("job", job.Name()),
		zap.Int("max_retries", q.opts.MaxRetries),
		zap.Error(err),
	)
}

// JobFunc adapts a function into a Job.
type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context) error
}

// Name returns the job name used in logs.
func (j JobFunc) Name() string { return j.JobName }

// Run executes the wrapped function.
func (j JobFunc) Run(ctx context.Context) error { return j.Fn(ctx) }
