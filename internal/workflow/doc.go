// Package workflow schedules queued download jobs onto worker processes.
//
// The Manager owns the parallel limit and a small signal channel. Submitting
// a job, changing the limit, and a job finishing each call Signal; the run
// loop wakes up and dispatches pending jobs in FIFO order until the limit is
// reached. Each dispatched job runs in its own goroutine: the worker's
// combined output is split into lines, salient lines are broadcast, and the
// progress parser updates the job record under the queue lock.
//
// There is no polling and no retry. A job that fails stays failed until the
// history is cleared.
package workflow
