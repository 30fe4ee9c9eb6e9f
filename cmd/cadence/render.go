package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"cadence/internal/progress"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
	ansiDim    = "\x1b[2m"
)

const (
	statusLabelWidth = 18
	statusIndent     = "  "
)

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func paint(value, color string, colorize bool) string {
	if !colorize || color == "" || value == "" {
		return value
	}
	return color + value + ansiReset
}

// statusColor maps job and sub-task statuses to a terminal colour.
func statusColor(status string) string {
	switch status {
	case "completed":
		return ansiGreen
	case "failed":
		return ansiRed
	case "downloading":
		return ansiBlue
	case "skipped":
		return ansiDim
	case "pending":
		return ansiYellow
	default:
		return ""
	}
}

func renderField(label, value string) string {
	return fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", value)
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	return []string{paint(line, ansiBlue, colorize), paint(rule, ansiBlue, colorize)}
}

// eventColor highlights broadcast lines that report a job outcome.
func eventColor(line string) string {
	switch {
	case strings.HasPrefix(line, "Download failed"):
		return ansiRed
	case strings.HasPrefix(line, "Finished download"),
		strings.HasPrefix(line, "Metadata resolved"):
		return ansiGreen
	case strings.HasPrefix(line, progress.BroadcastPrefix):
		return ansiDim
	default:
		return ansiBlue
	}
}
