// Package services defines shared utilities consumed by the scheduler, the
// catalog client and the HTTP surface.
//
// Context helpers stamp job IDs, stage names and correlation identifiers for
// logging. Structured error markers plus the Wrap helper let callers classify
// failures (validation, not found, unavailable) without string matching.
package services
