package tasks

import (
	"context"

	"github.com/charmbracelet/log"
)

// Loop delivers completed tasks on the goroutine that calls it.
//
// A Loop must only be driven from one goroutine.
type Loop struct {
	queue    *Queue
	guard    LivenessGuard
	logger   *log.Logger
	recorder Recorder
}

// NewLoop creates a loop draining q.
func NewLoop(q *Queue, opts ...Option) *Loop {
	o := buildOptions(opts)
	return &Loop{
		queue:    q,
		guard:    o.guard,
		logger:   o.logger,
		recorder: o.recorder,
	}
}

// Step delivers the oldest completed task, if any.
func (l *Loop) Step() bool {
	t, ok := l.queue.Pop()
	if !ok {
		return false
	}
	l.deliver(t)
	return true
}

// Drain delivers the tasks queued when it was called, oldest first, and returns how many it handled.
// Tasks completing while it runs wait for the next call.
func (l *Loop) Drain() int {
	n := l.queue.Len()
	for i := range n {
		if !l.Step() {
			return i
		}
	}
	return n
}

// Run parks until tasks complete and drains them, until ctx ends.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.queue.Ready():
			l.Drain()
		}
	}
}

// RunUntilIdle drains until every task accepted by a runner has been delivered or discarded,
// including tasks submitted by callbacks along the way.
func (l *Loop) RunUntilIdle(ctx context.Context) error {
	for l.queue.Outstanding() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.queue.Ready():
			l.Drain()
		}
	}
	return nil
}

func (l *Loop) deliver(t *Task) {
	defer l.queue.settle()
	defer t.release()

	if !l.guard.IsAlive(t.Scope) {
		l.logger.Debug("discarding result for closed scope", "op", t.Op, "task", t.ID, "scope", t.Scope.Name())
		l.recorder.TaskDiscarded(t.Op)
		return
	}

	defer func() {
		if p := recover(); p != nil {
			l.logger.Error("callback panicked", "op", t.Op, "task", t.ID, "panic", p)
		}
	}()

	l.recorder.TaskDelivered(t.Op)
	t.deliver()
}
