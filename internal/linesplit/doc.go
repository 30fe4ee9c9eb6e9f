// Package linesplit turns a worker's combined output stream into logical lines.
//
// Worker tools redraw progress bars with bare carriage returns, so both '\n'
// and '\r' terminate a line. Bytes are decoded permissively, lines are trimmed,
// and blank lines are dropped. A trailing fragment that never receives a
// terminator is discarded when the stream ends.
package linesplit
