package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newEventsCommand(ctx *commandContext) *cobra.Command {
	var timestamps bool
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Follow the daemon's live event stream",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			return ctx.client().Events(cmd.Context(), func(line string) error {
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]string{
						"time": time.Now().UTC().Format(time.RFC3339),
						"line": line,
					})
				}
				if timestamps {
					line = time.Now().Format("15:04:05") + " " + line
				}
				_, err := fmt.Fprintln(out, paint(line, eventColor(line), colorize))
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&timestamps, "timestamps", false, "Prefix each line with the local time")
	return cmd
}
