package queue

import (
	"context"
	"sync"

	"github.com/creatorly/styletrain/internal/domain"
	"github.com/creatorly/styletrain/internal/logger"
)

// Runner executes one training job. The queue calls it exactly once per
// job; a failed run is not re-enqueued.
type Runner interface {
	Run(ctx context.Context, job *domain.TrainingJob) error
}

// Queue is the in-process training queue: a bounded channel drained by a
// fixed pool of workers.
type Queue struct {
	jobs   chan *domain.TrainingJob
	runner Runner

	workers int
	wg      sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// New creates a Queue with the given worker count and buffer size.
func New(runner Runner, workers, size int) *Queue {
	if workers <= 0 {
		workers = 1
	}
	if size <= 0 {
		size = 1
	}
	return &Queue{
		jobs:    make(chan *domain.TrainingJob, size),
		runner:  runner,
		workers: workers,
	}
}

// Start launches the worker pool. Workers drain the queue until it is
// shut down or ctx is cancelled.
func (q *Queue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
}

func (q *Queue) worker(ctx context.Context, id int) {
	defer q.wg.Done()
	wctx := logger.WithField(ctx, "worker", id)
	logger.CtxDebug(wctx, "worker started")

	for {
		select {
		case <-ctx.Done():
			logger.CtxDebug(wctx, "worker stopping: %v", ctx.Err())
			return
		case job, ok := <-q.jobs:
			if !ok {
				return
			}
			// Run errors are already recorded on the job row; nothing
			// to do here but move on.
			_ = q.runner.Run(wctx, job)
		}
	}
}

// Enqueue submits a job without blocking. A full queue is reported as a
// retryable condition so the caller can tell the user to try again.
func (q *Queue) Enqueue(job *domain.TrainingJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return domain.NewError(domain.ErrExternalService, "training queue is shut down")
	}

	select {
	case q.jobs <- job:
		return nil
	default:
		return domain.NewRetryable(domain.ErrExternalService, nil, "training queue is full")
	}
}

// Backlog reports how many jobs are waiting.
func (q *Queue) Backlog() int {
	return len(q.jobs)
}

// Shutdown stops intake and waits for in-flight jobs to finish.
func (q *Queue) Shutdown() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()
	q.wg.Wait()
}
