// Package preflight runs the environment checks reported by `cadence status`
// and the daemon status endpoint: directory permissions and the worker binary.
package preflight
