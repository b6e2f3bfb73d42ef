package pool

// Job is a single, owned unit of deferred work. It takes no arguments,
// returns nothing, and is invoked exactly once, on exactly one worker.
// Anything a job needs it must capture itself; the pool reports nothing
// back about its execution.
type Job func()
