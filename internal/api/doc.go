// Package api defines the wire types and the control service behind the
// daemon's HTTP surface and the CLI client.
//
// # Key Types
//
// DownloadRequest: submission payload, validated with struct tags.
//
// Job/SubTask: transport representation of a queued job. Field names use
// snake_case to match the historical queue payload.
//
// DaemonStatus/WorkflowStatus: daemon state, parallel limit, queue counts,
// last job and dependency availability.
//
// # Service
//
// Service is the single entry point used by request handlers: submit, list,
// parallel limit, history clear, catalog search, artist discography and the
// worker settings file. Every mutating call broadcasts a status line.
//
// HTTPStatus maps services error markers to response codes.
package api
