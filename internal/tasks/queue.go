package tasks

import (
	"sync"
	"sync/atomic"
)

// Queue is the completion queue between workers and the loop.
//
// Push is safe from any goroutine; Pop is called only by the loop. The queue is unbounded so
// workers never block on it.
type Queue struct {
	mu    sync.Mutex
	items []*Task
	ready chan struct{}

	outstanding atomic.Int64 // submitted but not yet delivered or discarded
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

// Push appends t and wakes a parked loop.
func (q *Queue) Push(t *Task) {
	q.mu.Lock()
	q.items = append(q.items, t)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Pop removes the oldest task.
func (q *Queue) Pop() (*Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}
	t := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return t, true
}

// Len returns the number of queued tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Ready receives a value after at least one Push since the last receive.
func (q *Queue) Ready() <-chan struct{} {
	return q.ready
}

// Outstanding returns the number of tasks accepted by a runner that the loop has not finished with.
func (q *Queue) Outstanding() int {
	return int(q.outstanding.Load())
}

func (q *Queue) track()  { q.outstanding.Add(1) }
func (q *Queue) settle() { q.outstanding.Add(-1) }
