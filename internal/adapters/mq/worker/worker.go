// Package worker runs the asynchronous evaluation consumers over the queue.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/Base-InfoFi/Backend/internal/adapters/mq/queue"
	"github.com/Base-InfoFi/Backend/pkg/logger"
	"github.com/Base-InfoFi/Backend/pkg/metrics"
)

const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Evaluator scores one content item end to end: oracle call, policy, ledger
// write. Implementations own their idempotency; a task for an already
// judged item must not fail the worker.
type Evaluator interface {
	Evaluate(ctx context.Context, contentID string) error
}

// Queue defines how workers receive tasks.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Task
}

// Worker processes evaluation tasks until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// TaskWorker implements Worker over a single dequeue loop.
type TaskWorker struct {
	queue     Queue
	evaluator Evaluator
	name      string

	shutdown chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	logger logger.Logger
}

// NewTaskWorker creates a worker with configuration options.
func NewTaskWorker(q Queue, evaluator Evaluator, opts ...Option) *TaskWorker {
	w := &TaskWorker{
		queue:     q,
		evaluator: evaluator,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *TaskWorker) Run(ctx context.Context) {
	defer close(w.done)

	tasks := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case task, ok := <-tasks:
			if !ok {
				return
			}
			if err := w.evaluator.Evaluate(ctx, task.ContentID); err != nil {
				metrics.RecordWorkerError()
				w.logger.Error(ctx, "evaluation failed",
					logger.String("content_id", task.ContentID),
					logger.Duration("queued_for", time.Since(task.EnqueuedAt)),
					logger.Error(err),
				)
			}
		}
	}
}

func (w *TaskWorker) stop() {
	w.stopOnce.Do(func() { close(w.shutdown) })
}

// Shutdown gracefully stops the worker.
func (w *TaskWorker) Shutdown(ctx context.Context) error {
	w.stop()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*TaskWorker
	queue   Queue

	shutdown chan struct{}

	logger logger.Logger
}

// NewPool creates a pool of workerCount workers. A non-positive count
// defaults to a multiple of the CPU count.
func NewPool(workerCount int, q Queue, evaluator Evaluator) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:  make([]*TaskWorker, workerCount),
		queue:    q,
		shutdown: make(chan struct{}),
		logger:   logger.Named("worker-pool"),
	}

	for i := range pool.workers {
		pool.workers[i] = NewTaskWorker(q, evaluator,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop signals all workers and waits briefly for each to finish.
func (p *Pool) Stop() {
	close(p.shutdown)

	for _, w := range p.workers {
		w.stop()
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
}

// Shutdown closes the queue, stops the workers, and waits for them to drain.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	for _, w := range p.workers {
		w.stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	metrics.UpdateWorkerCount(0)

	return nil
}
