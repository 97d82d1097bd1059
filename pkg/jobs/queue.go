package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a unit of background work. Payload is interpreted by the
// handler registered with the queue.
type Job struct {
	ID       string
	Type     string
	Payload  interface{}
	Attempt  int
	Enqueued time.Time
}

// Handler processes a single job. A non-nil error triggers a retry
// until the queue's retry limit is reached.
type Handler func(ctx context.Context, job Job) error

type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Queue is a bounded in-process worker pool with delayed retries.
type Queue struct {
	name       string
	handler    Handler
	jobs       chan Job
	workers    int
	maxRetries int
	retryDelay time.Duration
	log        *zap.Logger

	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	buffer := cfg.BufferSize
	if buffer <= 0 {
		buffer = workers * 4
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 3
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Queue{
		name:       name,
		handler:    handler,
		jobs:       make(chan Job, buffer),
		workers:    workers,
		maxRetries: retries,
		retryDelay: delay,
		log:        log.With(zap.String("queue", name)),
	}
}

// Start launches the worker pool. It is not safe to call twice.
func (q *Queue) Start(ctx context.Context) {
	ctx, q.cancel = context.WithCancel(ctx)
	q.started = true
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.work(ctx)
	}
	q.log.Info("queue_started", zap.Int("workers", q.workers))
}

// Stop cancels the workers and waits for in-flight jobs to finish.
func (q *Queue) Stop() {
	if !q.started {
		return
	}
	q.cancel()
	q.wg.Wait()
	q.started = false
	q.log.Info("queue_stopped")
}

// Enqueue submits a job, blocking while the buffer is full.
func (q *Queue) Enqueue(job Job) error {
	if !q.started {
		return errors.New("queue not started")
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now()
	}
	q.jobs <- job
	return nil
}

func (q *Queue) work(ctx context.Context) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-q.jobs:
			if err := q.handler(ctx, job); err != nil {
				q.handleFailure(ctx, job, err)
			}
		}
	}
}

func (q *Queue) handleFailure(ctx context.Context, job Job, err error) {
	job.Attempt++
	if job.Attempt >= q.maxRetries {
		q.log.Error("job_dropped",
			zap.String("job_id", job.ID),
			zap.String("job_type", job.Type),
			zap.Int("attempts", job.Attempt),
			zap.Error(err))
		return
	}

	q.log.Warn("job_retry",
		zap.String("job_id", job.ID),
		zap.String("job_type", job.Type),
		zap.Int("attempt", job.Attempt),
		zap.Error(err))

	go func() {
		timer := time.NewTimer(q.retryDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
			select {
			case q.jobs <- job:
			case <-ctx.Done():
			}
		}
	}()
}
