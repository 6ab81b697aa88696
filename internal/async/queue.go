package async

import (
	"context"
	"sync"
	"time"

	"log/slog"

	"github.com/encartelab/flyer-tracker/internal/entity"
	"github.com/encartelab/flyer-tracker/internal/pipeline"
)

// SubmissionQueue fans flyer submissions out to a fixed worker pool. The
// bounded channel plus worker count is the explicit cap on in-flight
// pipelines; the transport handler blocks (briefly) instead of spawning an
// unbounded number of runs.
type SubmissionQueue struct {
	pipe    *pipeline.Pipeline
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan entity.FlyerSubmission
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*SubmissionQueue)

func WithWorkers(n int) Option {
	return func(q *SubmissionQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *SubmissionQueue) {
		if n > 0 {
			q.ch = make(chan entity.FlyerSubmission, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *SubmissionQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewSubmissionQueue(pipe *pipeline.Pipeline, logger *slog.Logger, opts ...Option) *SubmissionQueue {
	q := &SubmissionQueue{
		pipe:    pipe,
		logger:  logger,
		workers: 4,
		timeout: 5 * time.Minute,
		ch:      make(chan entity.FlyerSubmission, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *SubmissionQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for sub := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					res := q.pipe.Process(ctx, sub)
					cancel()

					if res.Err != nil {
						q.logger.Error("submission failed",
							"worker_id", workerID,
							"submission_id", res.SubmissionID,
							"failed_at", string(res.FailedAt),
							"error", res.Err,
						)
					} else {
						q.logger.Info("submission processed",
							"worker_id", workerID,
							"submission_id", res.SubmissionID,
							"flyer_id", res.Persisted.FlyerID,
						)
					}
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *SubmissionQueue) Enqueue(_ context.Context, sub entity.FlyerSubmission) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "submission_id", sub.ID)
		return nil
	}
	select {
	case q.ch <- sub:
		q.logger.Info("queued submission", "submission_id", sub.ID, "source_contact", sub.SourceContact)
	default:
		q.logger.Warn("queue full, applying backpressure", "submission_id", sub.ID)
		q.ch <- sub
	}
	return nil
}

func (q *SubmissionQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
