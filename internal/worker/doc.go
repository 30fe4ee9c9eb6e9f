// Package worker builds and launches the external downloader process.
//
// BuildArgs maps a job's codec and reference shape to command-line flags.
// Runner starts a process whose stdout and stderr share a single pipe so the
// caller reads one interleaved stream. The exec implementation places the
// worker in its own process group and terminates the whole group when the
// context is cancelled.
package worker
