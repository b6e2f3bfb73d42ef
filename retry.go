package httpserver

import "time"

// Retry runs a function up to a fixed number of times, sleeping between
// attempts, and reports the last error when every attempt fails.
type Retry struct {
	sleepDuration time.Duration
	RetryFunc     func() error
	numTries      int
}

func NewRetry(numTries int, sleepDuration time.Duration, retryFunc func() error) *Retry {
	return &Retry{
		sleepDuration: sleepDuration,
		RetryFunc:     retryFunc,
		numTries:      numTries,
	}
}

func (r *Retry) Do() error {
	var err error
	for i := 0; i < r.numTries; i++ {
		err = r.RetryFunc()
		if err == nil {
			break
		}
		time.Sleep(r.sleepDuration)
	}

	return err
}
