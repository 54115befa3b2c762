package tasks

import "time"

// Recorder receives lifecycle events from the runner and the loop.
//
// Every TaskSubmitted is followed by exactly one TaskFinished, so a recorder can derive the
// number of running workers from the two.
type Recorder interface {
	TaskSubmitted(op string)
	SpawnFailed(op string)
	TaskFinished(op string, failed bool, elapsed time.Duration)
	TaskDelivered(op string)
	TaskDiscarded(op string)
}

// NopRecorder discards every event.
type NopRecorder struct{}

func (NopRecorder) TaskSubmitted(string)                     {}
func (NopRecorder) SpawnFailed(string)                       {}
func (NopRecorder) TaskFinished(string, bool, time.Duration) {}
func (NopRecorder) TaskDelivered(string)                     {}
func (NopRecorder) TaskDiscarded(string)                     {}
