package pool

import (
	"errors"
	"sync"
)

// ErrQueueClosed is reported by Enqueue after Close. The pool closes the
// queue only during teardown, so a caller seeing this error submitted work
// after shutdown began.
var ErrQueueClosed = errors.New("job queue is closed")

// JobQueue is an unbounded FIFO transport of jobs from submitters to
// workers. Any number of producers and consumers may share one queue; each
// job is handed to exactly one consumer. Enqueue never blocks, which is a
// deliberate trade: sustained overload grows the backlog without bound
// instead of pushing back on producers.
type JobQueue struct {
	mu     sync.Mutex
	ready  *sync.Cond
	jobs   []Job
	closed bool
}

func NewJobQueue() *JobQueue {
	q := &JobQueue{}
	q.ready = sync.NewCond(&q.mu)
	return q
}

// Enqueue makes the job visible to exactly one consumer.
func (q *JobQueue) Enqueue(job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	q.jobs = append(q.jobs, job)
	q.ready.Signal()
	return nil
}

// Dequeue blocks until a job is available or the queue is closed and fully
// drained. The second return value is false only for the closed signal;
// jobs enqueued before Close are still delivered first.
func (q *JobQueue) Dequeue() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.jobs) == 0 && !q.closed {
		q.ready.Wait()
	}

	if len(q.jobs) == 0 {
		return nil, false
	}

	job := q.jobs[0]
	q.jobs[0] = nil
	q.jobs = q.jobs[1:]
	return job, true
}

// Close stops further enqueues and wakes every blocked consumer. It is safe
// to call more than once.
func (q *JobQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	q.ready.Broadcast()
}

// Len reports the number of jobs waiting to be dequeued.
func (q *JobQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}
