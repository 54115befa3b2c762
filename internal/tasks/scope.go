package tasks

import (
	"sync/atomic"

	"github.com/desertthunder/plx/internal/shared"
)

// Scope is the handle for the context that requested a task, such as a view or a command.
//
// Closing a scope does not cancel work already running; it only stops delivery of the result.
type Scope struct {
	id     string
	name   string
	closed atomic.Bool
}

// NewScope creates an open scope. The name is only used in logs.
func NewScope(name string) *Scope {
	return &Scope{id: shared.GenerateID(), name: name}
}

// ID returns the scope id, or an empty string for a nil scope.
func (s *Scope) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

// Name returns the scope name, or an empty string for a nil scope.
func (s *Scope) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// Close marks the scope dead. It is safe to call more than once and from any goroutine.
func (s *Scope) Close() {
	s.closed.Store(true)
}

// Closed reports whether Close has been called. A nil scope is never closed.
func (s *Scope) Closed() bool {
	return s != nil && s.closed.Load()
}

// LivenessGuard decides, on the loop goroutine, whether a completed task may still be delivered.
type LivenessGuard interface {
	IsAlive(scope *Scope) bool
}

// GuardFunc adapts a function to [LivenessGuard].
type GuardFunc func(scope *Scope) bool

func (f GuardFunc) IsAlive(scope *Scope) bool { return f(scope) }

// ScopeGuard is the default guard: a scope is alive until closed.
type ScopeGuard struct{}

func (ScopeGuard) IsAlive(scope *Scope) bool { return !scope.Closed() }
