package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	AddItems Phase = iota
	RemoveItems
	UpdateItems
	BatchDone
	BatchAborted
)

func (p Phase) String() string {
	switch p {
	case AddItems:
		return "add_items"
	case RemoveItems:
		return "remove_items"
	case UpdateItems:
		return "update_items"
	case BatchDone:
		return "batch_done"
	case BatchAborted:
		return "batch_aborted"
	default:
		return ""
	}
}

// SendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func SendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full, skip this update
	}
}

// ItemUpdate reports that item step of total in phase is being applied.
func ItemUpdate(phase Phase, step, total int, subject string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, subject),
	}
}

// DoneUpdate reports a batch that applied every item.
func DoneUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BatchDone,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("✓ %d items applied", total),
	}
}

// AbortedUpdate reports a batch stopped by the failure of item step.
func AbortedUpdate(step, total int, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BatchAborted,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %v", step, total, err),
		Data:    err,
	}
}
