// Package pool implements a fixed-size worker pool over an unbounded job
// queue. Workers are spawned once at construction and live until Stop,
// which drains the queue and joins every worker before returning.
package pool

// Pool is the narrow surface consumers submit work through.
type Pool interface {
	// Submit hands a job to the pool for execution on one of its workers.
	// It returns immediately and reports ErrPoolClosed once Stop has been
	// called.
	Submit(Job) error

	// Stop stops the worker pool, tears down any required resources,
	// and should only be called once
	Stop() error
}
