package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/plx/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	mu                                                  sync.Mutex
	submitted, spawnFailed, finished, failed, delivered int
	discarded                                           int
}

func (r *countingRecorder) TaskSubmitted(string) { r.mu.Lock(); r.submitted++; r.mu.Unlock() }
func (r *countingRecorder) SpawnFailed(string)   { r.mu.Lock(); r.spawnFailed++; r.mu.Unlock() }
func (r *countingRecorder) TaskDelivered(string) { r.mu.Lock(); r.delivered++; r.mu.Unlock() }
func (r *countingRecorder) TaskDiscarded(string) { r.mu.Lock(); r.discarded++; r.mu.Unlock() }

func (r *countingRecorder) TaskFinished(_ string, failed bool, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished++
	if failed {
		r.failed++
	}
}

func idle(t *testing.T, b *Bridge) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, b.Loop.RunUntilIdle(ctx))
}

func TestRunner(t *testing.T) {
	t.Run("success is delivered once", func(t *testing.T) {
		b := New()
		var got []any
		task := NewTask("get", NewScope("test"),
			func(p any) { got = append(got, p) },
			func(*Error) { t.Error("unexpected error callback") },
		)

		require.NoError(t, b.Runner.Run(task, func(_ context.Context, t *Task) { t.Succeed(42) }))
		idle(t, b)

		assert.Equal(t, []any{42}, got)
		assert.True(t, task.Released())
		assert.Equal(t, 0, b.Queue.Outstanding())
	})

	t.Run("work recording nothing succeeds with nil payload", func(t *testing.T) {
		b := New()
		calls := 0
		task := NewTask("noop", nil, func(p any) {
			calls++
			assert.Nil(t, p)
		}, nil)

		require.NoError(t, b.Runner.Run(task, func(context.Context, *Task) {}))
		idle(t, b)
		assert.Equal(t, 1, calls)
	})

	t.Run("panic becomes unknown error", func(t *testing.T) {
		rec := &countingRecorder{}
		b := New(WithRecorder(rec))
		var got *Error
		task := NewTask("boom", nil, func(any) { t.Error("unexpected success") }, func(e *Error) { got = e })

		require.NoError(t, b.Runner.Run(task, func(context.Context, *Task) { panic("kaput") }))
		idle(t, b)

		require.NotNil(t, got)
		assert.Equal(t, UnknownError, got.Name)
		assert.ErrorIs(t, got, shared.ErrUnknown)
		assert.Equal(t, 1, rec.failed)
	})

	t.Run("panic after success still fails", func(t *testing.T) {
		b := New()
		successes := 0
		var got *Error
		task := NewTask("late_boom", nil, func(any) { successes++ }, func(e *Error) { got = e })

		require.NoError(t, b.Runner.Run(task, func(_ context.Context, t *Task) {
			t.Succeed("done")
			panic("after the fact")
		}))
		idle(t, b)

		assert.Equal(t, 0, successes)
		require.NotNil(t, got)
		assert.Equal(t, UnknownError, got.Name)
		assert.Contains(t, got.Message, "after the fact")
	})

	t.Run("closed runner fails synchronously", func(t *testing.T) {
		rec := &countingRecorder{}
		b := New(WithRecorder(rec))
		b.Runner.Close()

		ran := false
		err := b.Runner.Run(NewTask("late", nil, nil, nil), func(context.Context, *Task) { ran = true })

		assert.ErrorIs(t, err, shared.ErrSpawnFailed)
		assert.False(t, ran)
		assert.Equal(t, 0, b.Queue.Len())
		assert.Equal(t, 0, b.Queue.Outstanding())
		assert.Equal(t, 1, rec.spawnFailed)
	})

	t.Run("worker limit", func(t *testing.T) {
		b := New(WithMaxInFlight(1))
		release := make(chan struct{})

		require.NoError(t, b.Runner.Run(NewTask("slow", nil, nil, nil), func(context.Context, *Task) { <-release }))

		err := b.Runner.Run(NewTask("second", nil, nil, nil), func(context.Context, *Task) {})
		assert.ErrorIs(t, err, shared.ErrSpawnFailed)

		close(release)
		idle(t, b)
		assert.Equal(t, 0, b.Runner.InFlight())

		require.NoError(t, b.Runner.Run(NewTask("third", nil, nil, nil), func(context.Context, *Task) {}))
		idle(t, b)
	})

	t.Run("many workers each push exactly once", func(t *testing.T) {
		rec := &countingRecorder{}
		b := New(WithRecorder(rec))
		const n = 100

		delivered := 0
		for i := range n {
			task := NewTask("fan", nil, func(any) { delivered++ }, nil)
			require.NoError(t, b.Runner.Run(task, func(_ context.Context, t *Task) { t.Succeed(i) }))
		}
		idle(t, b)

		assert.Equal(t, n, delivered)
		assert.Equal(t, n, rec.submitted)
		assert.Equal(t, n, rec.finished)
		assert.Equal(t, n, rec.delivered)
	})
}

func TestLoop(t *testing.T) {
	t.Run("closed scope discards", func(t *testing.T) {
		rec := &countingRecorder{}
		b := New(WithRecorder(rec))
		scope := NewScope("view")
		release := make(chan struct{})
		storeWrites := 0

		task := NewTask("create", scope,
			func(any) { t.Error("success callback ran for closed scope") },
			func(*Error) { t.Error("error callback ran for closed scope") },
		)
		require.NoError(t, b.Runner.Run(task, func(_ context.Context, t *Task) {
			<-release
			storeWrites++
			t.Succeed("id")
		}))

		scope.Close()
		close(release)
		idle(t, b)

		assert.Equal(t, 1, storeWrites)
		assert.True(t, task.Released())
		assert.Equal(t, 1, rec.discarded)
		assert.Equal(t, 0, rec.delivered)
	})

	t.Run("error callback for failures", func(t *testing.T) {
		b := New()
		var got *Error
		task := NewTask("remove", NewScope("cmd"), nil, func(e *Error) { got = e })

		require.NoError(t, b.Runner.Run(task, func(_ context.Context, t *Task) {
			t.Fail(errors.New("store unavailable"))
		}))
		idle(t, b)

		require.NotNil(t, got)
		assert.Equal(t, UnknownError, got.Name)
		assert.Equal(t, "store unavailable", got.Message)
	})

	t.Run("custom guard", func(t *testing.T) {
		b := New(WithGuard(GuardFunc(func(*Scope) bool { return false })))
		task := NewTask("x", nil, func(any) { t.Error("guard should have discarded") }, nil)

		require.NoError(t, b.Runner.Run(task, func(context.Context, *Task) {}))
		idle(t, b)
		assert.True(t, task.Released())
	})

	t.Run("delivery follows push order", func(t *testing.T) {
		q := NewQueue()
		l := NewLoop(q)

		var order []string
		for _, name := range []string{"a", "b", "c"} {
			task := NewTask(name, nil, func(any) { order = append(order, name) }, nil)
			q.track()
			q.Push(task)
		}

		assert.Equal(t, 3, l.Drain())
		assert.Equal(t, []string{"a", "b", "c"}, order)
	})

	t.Run("drain leaves tasks queued by callbacks for the next iteration", func(t *testing.T) {
		q := NewQueue()
		l := NewLoop(q)

		follow := NewTask("follow", nil, nil, nil)
		first := NewTask("first", nil, func(any) {
			q.track()
			q.Push(follow)
		}, nil)
		q.track()
		q.Push(first)

		assert.Equal(t, 1, l.Drain())
		assert.Equal(t, 1, q.Len())
		assert.Equal(t, 1, l.Drain())
		assert.Equal(t, 0, l.Drain())
	})

	t.Run("step on empty queue", func(t *testing.T) {
		l := NewLoop(NewQueue())
		assert.False(t, l.Step())
		assert.Equal(t, 0, l.Drain())
	})

	t.Run("callback panic does not stop the loop", func(t *testing.T) {
		b := New()
		second := false

		require.NoError(t, b.Runner.Run(NewTask("a", nil, func(any) { panic("bad callback") }, nil), func(context.Context, *Task) {}))
		idle(t, b)
		require.NoError(t, b.Runner.Run(NewTask("b", nil, func(any) { second = true }, nil), func(context.Context, *Task) {}))
		idle(t, b)

		assert.True(t, second)
		assert.Equal(t, 0, b.Queue.Outstanding())
	})

	t.Run("run until idle follows chained submissions", func(t *testing.T) {
		b := New()
		depth := 0

		var submit func()
		submit = func() {
			task := NewTask("chain", nil, func(any) {
				depth++
				if depth < 5 {
					submit()
				}
			}, nil)
			require.NoError(t, b.Runner.Run(task, func(context.Context, *Task) {}))
		}
		submit()
		idle(t, b)

		assert.Equal(t, 5, depth)
	})

	t.Run("run stops with context", func(t *testing.T) {
		b := New()
		ctx, cancel := context.WithCancel(context.Background())

		delivered := make(chan struct{})
		require.NoError(t, b.Runner.Run(NewTask("a", nil, func(any) { close(delivered) }, nil), func(context.Context, *Task) {}))

		done := make(chan error, 1)
		go func() { done <- b.Loop.Run(ctx) }()

		select {
		case <-delivered:
		case <-time.After(5 * time.Second):
			t.Fatal("task was not delivered")
		}

		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
	})
}

func TestScope(t *testing.T) {
	s := NewScope("view")
	assert.False(t, s.Closed())
	assert.NotEmpty(t, s.ID())

	s.Close()
	s.Close()
	assert.True(t, s.Closed())

	var none *Scope
	assert.False(t, none.Closed())
	assert.Empty(t, none.Name())
	assert.True(t, ScopeGuard{}.IsAlive(none))
}

func TestSendProgress(t *testing.T) {
	t.Run("nil channel", func(t *testing.T) {
		SendProgress(nil, DoneUpdate(1))
	})

	t.Run("full channel never blocks", func(t *testing.T) {
		ch := make(chan ProgressUpdate, 1)
		SendProgress(ch, ItemUpdate(AddItems, 1, 2, "first"))
		SendProgress(ch, ItemUpdate(AddItems, 2, 2, "second"))

		got := <-ch
		assert.Equal(t, "[1/2] first", got.Message)
		assert.Equal(t, "add_items", got.Phase.String())
	})
}
