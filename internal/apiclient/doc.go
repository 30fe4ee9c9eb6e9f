// Package apiclient is the HTTP client used by the cadence CLI to talk to a
// running daemon.
//
// Non-2xx replies are decoded from the daemon's error body and returned as
// *Error values so callers can branch on the status code. Events follows the
// daemon's Server-Sent Events stream and hands each data payload to a
// callback until the context ends or the stream closes.
package apiclient
