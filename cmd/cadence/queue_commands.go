package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"cadence/internal/api"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the download queue",
	}
	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueAddCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var showTracks bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs in submission order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			jobs, err := ctx.client().Queue(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, jobs)
			}
			out := cmd.OutOrStdout()
			if len(jobs) == 0 {
				fmt.Fprintln(out, "Queue is empty")
				return nil
			}
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Status", "Codec", "Artist", "Title", "Tracks", "Progress"},
				jobRows(jobs, colorize),
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			if showTracks {
				for _, job := range jobs {
					if len(job.SubTasks) == 0 {
						continue
					}
					fmt.Fprintf(out, "\nJob %d: %s\n", job.ID, jobTitle(job))
					fmt.Fprintln(out, renderTable(
						[]string{"#", "Title", "Status"},
						subTaskRows(job.SubTasks, colorize),
						[]columnAlignment{alignRight},
					))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showTracks, "tracks", false, "Also list per-track status")
	return cmd
}

func jobRows(jobs []api.Job, colorize bool) [][]string {
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		rows = append(rows, []string{
			strconv.FormatInt(job.ID, 10),
			paint(job.Status, statusColor(job.Status), colorize),
			job.Codec,
			job.Artist,
			jobTitle(job),
			trackSummary(job),
			job.Progress,
		})
	}
	return rows
}

func subTaskRows(tasks []api.SubTask, colorize bool) [][]string {
	rows := make([][]string, 0, len(tasks))
	for _, task := range tasks {
		rows = append(rows, []string{
			strconv.Itoa(task.TrackNumber),
			task.Title,
			paint(task.Status, statusColor(task.Status), colorize),
		})
	}
	return rows
}

func jobTitle(job api.Job) string {
	switch {
	case job.Album != "" && job.Album != job.Title && job.Title != "":
		return job.Title + " (" + job.Album + ")"
	case job.Title != "":
		return job.Title
	case job.Album != "":
		return job.Album
	default:
		return job.URL
	}
}

// trackSummary reports finished tracks against the expected total.
func trackSummary(job api.Job) string {
	if len(job.SubTasks) == 0 {
		if job.TotalTracks == 0 {
			return ""
		}
		return strconv.Itoa(job.TotalTracks)
	}
	done := 0
	for _, task := range job.SubTasks {
		if task.Status == "completed" || task.Status == "skipped" {
			done++
		}
	}
	total := max(job.TotalTracks, len(job.SubTasks))
	return fmt.Sprintf("%d/%d", done, total)
}

func newQueueAddCommand(ctx *commandContext) *cobra.Command {
	var req api.DownloadRequest
	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Submit a catalog URL for download",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.URL = args[0]
			job, err := ctx.client().Submit(cmd.Context(), req)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, job)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Queued job %d (%s): %s\n", job.ID, job.Codec, job.URL)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Codec, "codec", "", "Codec (alac, aac, atmos, ec3); defaults to alac")
	cmd.Flags().StringVar(&req.Title, "title", "", "Display title")
	cmd.Flags().StringVar(&req.Artist, "artist", "", "Display artist")
	cmd.Flags().StringVar(&req.Album, "album", "", "Display album")
	cmd.Flags().StringVar(&req.Image, "image", "", "Artwork URL")
	cmd.Flags().IntVar(&req.TrackNumber, "track-number", 0, "Track number for single-song submissions")
	cmd.Flags().IntVar(&req.TotalTracks, "total-tracks", 0, "Expected track count")
	return cmd
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove completed and failed jobs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			removed, err := ctx.client().ClearHistory(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, api.ClearResponse{Status: "cleared", Removed: removed})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d finished jobs\n", removed)
			return nil
		},
	}
}
