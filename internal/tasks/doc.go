// Package tasks bridges a single-threaded host loop and blocking store calls.
//
// # Lifecycle
//
// A [Task] has exactly one owner at a time:
//
//  1. The caller builds it with [NewTask], attaching a [Scope] and two callbacks.
//  2. [Runner.Run] hands it to a fresh goroutine, which runs the [WorkFunc] once.
//  3. The goroutine pushes the finished task onto the [Queue], exactly once, even when work panics.
//  4. The host drains the queue with [Loop.Step], [Loop.Drain], [Loop.Run] or [Loop.RunUntilIdle].
//  5. The [LivenessGuard] decides delivery: a live scope gets exactly one callback, a dead scope gets none.
//  6. The task is released and its callbacks dropped.
//
// Callbacks always run on the goroutine that drains the queue, so hosts never need locks
// around state those callbacks touch.
//
// # Errors
//
// Failures reach callbacks as [*Error] values whose Name is one of [InvalidValuesError],
// [NotFoundError] or [UnknownError]. Anything that is not a recognised store error maps to
// [UnknownError].
//
// # Progress Reporting
//
// Long running work may report [ProgressUpdate] values on a channel through [SendProgress],
// which never blocks the worker.
package tasks
