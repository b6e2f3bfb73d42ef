package pool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJobQueue_DeliversInOrder(t *testing.T) {
	q := NewJobQueue()

	var got []int
	for i := 0; i < 5; i++ {
		i := i
		require.NoError(t, q.Enqueue(func() { got = append(got, i) }))
	}
	require.Equal(t, 5, q.Len())

	for i := 0; i < 5; i++ {
		job, ok := q.Dequeue()
		require.True(t, ok)
		job()
	}

	require.Equal(t, []int{0, 1, 2, 3, 4}, got)
	require.Equal(t, 0, q.Len())
}

func TestJobQueue_EnqueueAfterCloseFails(t *testing.T) {
	q := NewJobQueue()
	q.Close()

	require.ErrorIs(t, q.Enqueue(func() {}), ErrQueueClosed)
}

func TestJobQueue_CloseIsIdempotent(t *testing.T) {
	q := NewJobQueue()

	// a second Close must not panic or deadlock
	q.Close()
	q.Close()
}

func TestJobQueue_DrainsBeforeClosedSignal(t *testing.T) {
	q := NewJobQueue()

	for i := 0; i < 3; i++ {
		require.NoError(t, q.Enqueue(func() {}))
	}
	q.Close()

	// the three queued jobs are still handed out before closure is observed
	for i := 0; i < 3; i++ {
		job, ok := q.Dequeue()
		require.True(t, ok)
		require.NotNil(t, job)
	}

	job, ok := q.Dequeue()
	require.False(t, ok)
	require.Nil(t, job)
}

func TestJobQueue_CloseWakesBlockedConsumers(t *testing.T) {
	q := NewJobQueue()

	woken := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func() {
			_, ok := q.Dequeue()
			require.False(t, ok)
			woken <- struct{}{}
		}()
	}

	// give the consumers time to block inside Dequeue
	time.Sleep(50 * time.Millisecond)
	q.Close()

	for i := 0; i < 4; i++ {
		select {
		case <-woken:
		case <-time.After(5 * time.Second):
			t.Fatal("consumer still blocked in Dequeue after Close")
		}
	}
}

func TestJobQueue_EachJobDeliveredToExactlyOneConsumer(t *testing.T) {
	q := NewJobQueue()

	const jobs = 200
	seen := make(chan int, jobs)
	for i := 0; i < jobs; i++ {
		i := i
		require.NoError(t, q.Enqueue(func() { seen <- i }))
	}
	q.Close()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			for {
				job, ok := q.Dequeue()
				if !ok {
					done <- struct{}{}
					return
				}
				job()
			}
		}()
	}

	for i := 0; i < 8; i++ {
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			t.Fatal("consumer never observed queue closure")
		}
	}

	close(seen)
	got := make(map[int]bool)
	for i := range seen {
		require.False(t, got[i], "job %d delivered more than once", i)
		got[i] = true
	}
	require.Len(t, got, jobs)
}
