package pool

import (
	"errors"
	"log/slog"
	"sync"
)

// ErrPoolClosed is reported by Submit once teardown has begun.
var ErrPoolClosed = errors.New("worker pool is not active")

// WorkerPool owns a fixed set of workers and the producer side of their
// shared job queue. All state lives on the instance; nothing is global.
type WorkerPool struct {
	// queue from which workers consume work
	queue *JobQueue

	workers []*Worker

	// ensure the pool can only be stopped once
	stop sync.Once

	log *slog.Logger
}

// NewWorkerPool creates a job queue and spawns exactly size workers
// consuming from it. The pool accepts work as soon as this returns.
//
// A size below 1 is a contract violation, not a runtime condition: the
// pool would accept submissions that no worker will ever process, so
// construction panics instead of returning an error.
func NewWorkerPool(size int, log *slog.Logger) *WorkerPool {
	if size < 1 {
		panic("pool: worker pool size must be at least 1")
	}

	if log == nil {
		log = slog.Default()
	}

	p := &WorkerPool{
		queue:   NewJobQueue(),
		workers: make([]*Worker, size),
		log:     log,
	}

	p.log.Info("starting worker pool")
	for i := range p.workers {
		w := newWorker(i, p.queue, p.log)
		p.workers[i] = w
		go w.start()
	}

	return p
}

// Submit enqueues a job and returns immediately; it never waits for queue
// space or for execution, and nothing about the job's outcome is reported
// back. The only failure mode is submitting after Stop.
func (p *WorkerPool) Submit(job Job) error {
	if err := p.queue.Enqueue(job); err != nil {
		return ErrPoolClosed
	}
	return nil
}

// Stop closes the queue so no further Submit can succeed, then joins every
// worker in construction order. Jobs already enqueued are still executed
// before the workers observe closure; Stop blocks until the last worker
// has exited. Calling Stop again is a no-op.
func (p *WorkerPool) Stop() error {
	p.stop.Do(func() {
		p.log.Info("stopping worker pool")

		// close the queue on which we receive new jobs
		p.queue.Close()

		// wait for all of them to clean themselves up
		for _, w := range p.workers {
			w.join()
		}

		p.log.Info("worker pool has been stopped")
	})
	return nil
}

// Size returns the fixed number of workers in the pool.
func (p *WorkerPool) Size() int {
	return len(p.workers)
}

var _ Pool = (*WorkerPool)(nil)
