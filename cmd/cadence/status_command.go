package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cadence/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon, queue and dependency status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := ctx.client().Status(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, status)
			}
			colorize := shouldColorize(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(statusLines(status, colorize), "\n"))
			return nil
		},
	}
}

func statusLines(status *api.DaemonStatus, colorize bool) []string {
	lines := renderSectionHeader("Daemon", colorize)
	running := paint("stopped", ansiRed, colorize)
	if status.Running {
		running = paint("running", ansiGreen, colorize)
	}
	lines = append(lines,
		renderField("State", running),
		renderField("PID", strconv.Itoa(status.PID)),
		renderField("Lock file", status.LockFilePath),
	)
	if status.LogPath != "" {
		lines = append(lines, renderField("Log file", status.LogPath))
	}
	lines = append(lines,
		renderField("Catalog", yesNo(status.CatalogEnabled)),
		renderField("Observers", strconv.Itoa(status.Observers)),
	)

	wf := status.Workflow
	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Queue", colorize)...)
	lines = append(lines,
		renderField("Parallel limit", strconv.Itoa(wf.ParallelLimit)),
		renderField("Active", strconv.Itoa(wf.Active)),
	)
	statuses := make([]string, 0, len(wf.QueueStats))
	for name := range wf.QueueStats {
		statuses = append(statuses, name)
	}
	sort.Strings(statuses)
	for _, name := range statuses {
		label := strings.ToUpper(name[:1]) + name[1:]
		lines = append(lines, renderField(label, strconv.Itoa(wf.QueueStats[name])))
	}
	if wf.LastError != "" {
		lines = append(lines, renderField("Last error", paint(wf.LastError, ansiRed, colorize)))
	}

	if len(status.Dependencies) > 0 {
		lines = append(lines, "")
		lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
		for _, dep := range status.Dependencies {
			value := paint("available", ansiGreen, colorize)
			if !dep.Available {
				color := ansiRed
				if dep.Optional {
					color = ansiYellow
				}
				value = paint("missing", color, colorize)
				if dep.Detail != "" {
					value += " (" + dep.Detail + ")"
				}
			}
			lines = append(lines, renderField(dep.Name, value))
		}
	}
	return lines
}
