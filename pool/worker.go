package pool

import (
	"fmt"
	"log/slog"
)

// Worker is a worker instance
type Worker struct {
	// the worker id
	id int

	// queue from which the worker consumes work
	queue *JobQueue

	// closed when the worker's goroutine has exited
	done chan struct{}

	log *slog.Logger
}

func newWorker(id int, queue *JobQueue, log *slog.Logger) *Worker {
	return &Worker{
		id:    id,
		queue: queue,
		done:  make(chan struct{}),
		log:   log,
	}
}

// start runs the dequeue/execute loop until the queue reports closure.
func (w *Worker) start() {
	w.log.Info(fmt.Sprintf("starting worker %d", w.id))

	defer func() {
		close(w.done)
		w.log.Info(fmt.Sprintf("worker %d has been stopped", w.id))
	}()

	for {
		job, ok := w.queue.Dequeue()
		if !ok {
			w.log.Info(fmt.Sprintf("stopping worker %d with closed job queue", w.id))
			return
		}

		w.log.Debug(fmt.Sprintf("worker %d got a job; executing", w.id))

		// the job runs unprotected: a panicking job is the job author's
		// problem, not the pool's
		job()
	}
}

// join blocks until the worker's goroutine has exited.
func (w *Worker) join() {
	<-w.done
}

// ID is the worker's ordinal identity within its pool.
func (w *Worker) ID() int { return w.id }
