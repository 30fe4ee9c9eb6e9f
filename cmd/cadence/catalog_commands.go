package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"cadence/internal/catalog"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Search the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := ctx.client().Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, results)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			printed := printItemGroup(out, "Top results", results.Top, colorize)
			printed = printItemGroup(out, "Songs", results.Songs, colorize) || printed
			printed = printItemGroup(out, "Albums", results.Albums, colorize) || printed
			printed = printItemGroup(out, "Artists", results.Artists, colorize) || printed
			printed = printItemGroup(out, "Music videos", results.MusicVideos, colorize) || printed
			printed = printItemGroup(out, "Playlists", results.Playlists, colorize) || printed
			if !printed {
				fmt.Fprintln(out, "No results")
			}
			return nil
		},
	}
}

func newArtistCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "artist <url>",
		Short: "List an artist's discography",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			disc, err := ctx.client().Artist(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, disc)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			printed := printItemGroup(out, "Albums", disc.Albums, colorize)
			printed = printItemGroup(out, "EPs", disc.EPs, colorize) || printed
			printed = printItemGroup(out, "Singles", disc.Singles, colorize) || printed
			printed = printItemGroup(out, "Compilations", disc.Compilations, colorize) || printed
			printed = printItemGroup(out, "Music videos", disc.MusicVideos, colorize) || printed
			if !printed {
				fmt.Fprintln(out, "No releases")
			}
			return nil
		},
	}
}

// printItemGroup renders one titled table and reports whether anything was
// written.
func printItemGroup(out io.Writer, title string, items []catalog.Item, colorize bool) bool {
	if len(items) == 0 {
		return false
	}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{item.Type, item.Name, item.Artist, item.ReleaseDate, item.URL})
	}
	fmt.Fprintln(out, strings.Join(renderSectionHeader(title, colorize), "\n"))
	fmt.Fprintln(out, renderTable([]string{"Type", "Name", "Artist", "Released", "URL"}, rows, nil))
	fmt.Fprintln(out)
	return true
}
