// Package daemon coordinates the long-running cadence process.
//
// It ties the queue, the workflow manager, the event hub and the control
// service into a single lifecycle guarded by a flock-based single-instance
// lock, and serves the HTTP API: queue control, catalog queries, worker
// settings, a Server-Sent Events stream of broadcast lines and Prometheus
// metrics.
//
// Keep orchestration here; dispatch lives in workflow and request semantics
// in api.
package daemon
