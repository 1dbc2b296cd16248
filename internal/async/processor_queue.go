package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-renamer/internal/common"
	"github.com/joseph-ayodele/invoice-renamer/internal/core"
)

// FileProcessor is satisfied by *core.Processor.
type FileProcessor interface {
	ProcessFile(ctx context.Context, fileID uuid.UUID) (core.Result, error)
}

// ResultHook observes every finished job.
type ResultHook func(job Job, res core.Result, err error)

type ProcessorQueue struct {
	proc    FileProcessor
	logger  *slog.Logger
	workers int
	timeout time.Duration
	hook    ResultHook

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	// done is closed first on shutdown to release blocked senders; mu keeps
	// ch open while any Enqueue holds the read lock.
	done     chan struct{}
	stopOnce sync.Once
	mu       sync.RWMutex
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func WithResultHook(h ResultHook) Option {
	return func(q *ProcessorQueue) { q.hook = h }
}

func NewProcessorQueue(proc FileProcessor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 2 * time.Minute,
		ch:      make(chan Job, 256),
		done:    make(chan struct{}),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go q.work(i + 1)
		}
	})
}

func (q *ProcessorQueue) work(workerID int) {
	defer q.wg.Done()
	q.logger.Debug("worker started", "worker_id", workerID)

	for job := range q.ch {
		ctx := context.Background()
		if job.TraceID != "" {
			ctx = common.WithRequestID(ctx, job.TraceID)
		}
		ctx, cancel := common.WithTimeout(ctx, q.timeout)
		res, err := q.proc.ProcessFile(ctx, job.FileID)
		cancel()

		if err != nil {
			q.logger.Error("queue.process.failed", "worker_id", workerID, "file_id", job.FileID, "path", job.Path, "error", err)
		} else {
			q.logger.Info("queue.process.ok", "worker_id", workerID, "file_id", job.FileID, "job_id", res.JobID, "wait", time.Since(job.SubmittedAt))
		}
		if q.hook != nil {
			q.hook(job, res, err)
		}
	}

	q.logger.Debug("worker stopped", "worker_id", workerID)
}

// Enqueue blocks while the queue is full, until ctx is done or the queue
// shuts down.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	select {
	case <-q.done:
		q.logger.Warn("cannot enqueue: queue is shutting down", "file_id", job.FileID)
		return ErrQueueClosed
	default:
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
		q.logger.Debug("queued file for processing", "file_id", job.FileID, "force", job.Force)
		return nil
	default:
	}
	q.logger.Warn("queue full, applying backpressure", "file_id", job.FileID)
	select {
	case q.ch <- job:
		return nil
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops intake and waits for queued jobs to drain or ctx to end.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	first := false
	q.stopOnce.Do(func() {
		first = true
		close(q.done)
		q.mu.Lock()
		close(q.ch)
		q.mu.Unlock()
	})
	if !first {
		return
	}

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
