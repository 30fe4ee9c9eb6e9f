// Package progress extracts structured job progress from worker output lines.
//
// A Parser is a small line-at-a-time state machine. Its only memory is
// whether the previous line announced a track (so the next line is that
// track's name), which sub-task is active, and the completed/total track
// counters used to render progress text.
package progress
