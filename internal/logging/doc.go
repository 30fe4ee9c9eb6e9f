// Package logging assembles the slog loggers used across cadence.
//
// It owns the console and JSON handlers, level and output plumbing, and the
// context helpers that tag log lines with job identifiers, stages and
// correlation IDs. A no-op logger is provided for tests and optional wiring.
package logging
