package main

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and edit the downloader settings file",
	}
	settingsCmd.AddCommand(newSettingsShowCommand(ctx))
	settingsCmd.AddCommand(newSettingsSetCommand(ctx))
	return settingsCmd
}

func newSettingsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current downloader settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := ctx.client().Settings(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, settings)
			}
			keys := make([]string, 0, len(settings))
			for key := range settings {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			rows := make([][]string, 0, len(keys))
			for _, key := range keys {
				rows = append(rows, []string{key, fmt.Sprint(settings[key])})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Key", "Value"}, rows, nil))
			return nil
		},
	}
}

func newSettingsSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key=value>...",
		Short: "Update one or more downloader settings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changes, err := parseAssignments(args)
			if err != nil {
				return err
			}
			if err := ctx.client().UpdateSettings(cmd.Context(), changes); err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, changes)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d setting(s)\n", len(changes))
			return nil
		},
	}
}

// parseAssignments turns key=value arguments into a change set. Values are
// read as YAML scalars so numbers and booleans keep their type.
func parseAssignments(args []string) (map[string]any, error) {
	changes := make(map[string]any, len(args))
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q: expected key=value", arg)
		}
		var value any
		if strings.TrimSpace(raw) == "" {
			value = ""
		} else if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		switch v := value.(type) {
		case map[string]any, []any:
			value = raw
		case uint64:
			if v <= math.MaxInt64 {
				value = int64(v)
			} else {
				value = raw
			}
		}
		changes[key] = value
	}
	return changes, nil
}
