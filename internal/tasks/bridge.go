package tasks

// Bridge wires a [Queue] to the [Runner] that fills it and the [Loop] that drains it.
type Bridge struct {
	Queue  *Queue
	Runner *Runner
	Loop   *Loop
}

// New creates a bridge; options apply to both the runner and the loop.
func New(opts ...Option) *Bridge {
	q := NewQueue()
	return &Bridge{
		Queue:  q,
		Runner: NewRunner(q, opts...),
		Loop:   NewLoop(q, opts...),
	}
}
