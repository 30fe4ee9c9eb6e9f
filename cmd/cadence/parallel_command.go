package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"cadence/internal/api"
)

func newParallelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "parallel <limit>",
		Short: "Set the number of concurrent downloads (0 pauses dispatch)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid limit %q: %w", args[0], err)
			}
			applied, err := ctx.client().SetParallel(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, api.ParallelLimitResponse{Status: "updated", Limit: applied})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Parallel limit set to %d\n", applied)
			return nil
		},
	}
}
