package tasks

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plx/internal/shared"
)

// Runner starts one goroutine per task. Workers are never pooled and never joined.
type Runner struct {
	queue       *Queue
	logger      *log.Logger
	recorder    Recorder
	maxInFlight int64

	inFlight atomic.Int64
	closed   atomic.Bool
}

// NewRunner creates a runner that pushes finished tasks onto q.
func NewRunner(q *Queue, opts ...Option) *Runner {
	o := buildOptions(opts)
	return &Runner{
		queue:       q,
		logger:      o.logger,
		recorder:    o.recorder,
		maxInFlight: int64(o.maxInFlight),
	}
}

// Run hands t and work to a new goroutine and returns immediately.
//
// It fails with [shared.ErrSpawnFailed] when no worker can be started, in which case nothing is
// queued and no callback will ever run for t.
func (r *Runner) Run(t *Task, work WorkFunc) error {
	if r.closed.Load() {
		r.recorder.SpawnFailed(t.Op)
		return fmt.Errorf("%w: %s", shared.ErrRunnerClosed, t.Op)
	}
	if !r.acquire() {
		r.recorder.SpawnFailed(t.Op)
		r.logger.Warn("worker limit reached", "op", t.Op, "limit", r.maxInFlight)
		return fmt.Errorf("%w: %d workers already running", shared.ErrSpawnFailed, r.maxInFlight)
	}

	r.queue.track()
	r.recorder.TaskSubmitted(t.Op)

	go r.work(t, work)
	return nil
}

func (r *Runner) work(t *Task, work WorkFunc) {
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("worker panicked", "op", t.Op, "task", t.ID, "panic", p)
			t.fail(fmt.Errorf("%w: worker panicked: %v", shared.ErrUnknown, p))
		}

		r.inFlight.Add(-1)
		r.recorder.TaskFinished(t.Op, t.Failed(), time.Since(start))
		r.queue.Push(t)
	}()

	work(context.Background(), t)
}

func (r *Runner) acquire() bool {
	for {
		n := r.inFlight.Load()
		if r.maxInFlight > 0 && n >= r.maxInFlight {
			return false
		}
		if r.inFlight.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// InFlight returns the number of workers currently running.
func (r *Runner) InFlight() int {
	return int(r.inFlight.Load())
}

// Close stops the runner from accepting tasks. Running workers still finish and push.
func (r *Runner) Close() {
	r.closed.Store(true)
}
