package tasks

import (
	"io"

	"github.com/charmbracelet/log"
)

type options struct {
	logger      *log.Logger
	recorder    Recorder
	guard       LivenessGuard
	maxInFlight int
}

// Option configures a [Runner], a [Loop] or a [Bridge].
type Option func(*options)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(o *options) { o.recorder = r }
}

// WithGuard replaces the default [ScopeGuard].
func WithGuard(g LivenessGuard) Option {
	return func(o *options) { o.guard = g }
}

// WithMaxInFlight caps concurrently running workers. Zero or less means unbounded.
func WithMaxInFlight(n int) Option {
	return func(o *options) { o.maxInFlight = n }
}

func buildOptions(opts []Option) options {
	o := options{
		logger:   log.New(io.Discard),
		recorder: NopRecorder{},
		guard:    ScopeGuard{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
