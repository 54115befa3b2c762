package tasks

import (
	"context"
	"time"

	"github.com/desertthunder/plx/internal/shared"
)

// WorkFunc is the blocking part of a task. It runs on a worker goroutine and records
// its outcome with [Task.Succeed] or [Task.Fail]; recording nothing counts as success.
type WorkFunc func(ctx context.Context, t *Task)

// Task carries one operation from the caller, through a worker, to the loop.
type Task struct {
	ID        string
	Op        string
	Scope     *Scope
	Submitted time.Time

	onSuccess func(payload any)
	onError   func(err *Error)

	recorded bool
	payload  any
	err      *Error
	released bool
}

// NewTask builds a task for op. Either callback may be nil.
func NewTask(op string, scope *Scope, onSuccess func(payload any), onError func(err *Error)) *Task {
	return &Task{
		ID:        shared.GenerateID(),
		Op:        op,
		Scope:     scope,
		Submitted: time.Now(),
		onSuccess: onSuccess,
		onError:   onError,
	}
}

// Succeed records a success payload. Only the first recorded outcome counts.
func (t *Task) Succeed(payload any) {
	if t.recorded {
		return
	}
	t.recorded = true
	t.payload = payload
}

// Fail records a failure. Only the first recorded outcome counts.
func (t *Task) Fail(err error) {
	if t.recorded || err == nil {
		return
	}
	t.recorded = true
	t.err = NewError(err)
}

// fail records err over any earlier outcome. The runner uses it when work panics.
func (t *Task) fail(err error) {
	t.recorded = true
	t.payload = nil
	t.err = NewError(err)
}

func (t *Task) Failed() bool   { return t.err != nil }
func (t *Task) Err() *Error    { return t.err }
func (t *Task) Payload() any   { return t.payload }
func (t *Task) Released() bool { return t.released }

// deliver invokes exactly one callback for the recorded outcome.
func (t *Task) deliver() {
	if t.err != nil {
		if t.onError != nil {
			t.onError(t.err)
		}
		return
	}
	if t.onSuccess != nil {
		t.onSuccess(t.payload)
	}
}

// release drops the callbacks and the outcome so nothing captured by them outlives the task.
func (t *Task) release() {
	t.onSuccess = nil
	t.onError = nil
	t.payload = nil
	t.released = true
}
