// Package main hosts the cadence CLI entrypoint and command graph.
//
// The Cobra command tree runs the daemon in the foreground and translates
// the remaining invocations into HTTP calls against it: queue inspection and
// submission, the parallel limit, catalog search, worker settings and the
// live event stream. Configuration resolution and daemon address discovery
// live here so subcommands only deal with presentation.
package main
