// Package queue holds the in-memory job queue and the job record model.
//
// A Queue owns every Job. Callers receive deep copies from List and Get and
// mutate jobs only through Update and Transition, which run under the queue's
// single mutex. Claim performs the capacity check, the oldest-pending scan and
// the move to downloading as one atomic step, so concurrent dispatchers can
// never start the same job twice or exceed the parallel limit.
//
// Job status only moves forward: pending, downloading, then completed or
// failed. Jobs are never persisted; a restart begins with an empty queue.
package queue
