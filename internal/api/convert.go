package api

import (
	"time"

	"cadence/internal/deps"
	"cadence/internal/queue"
	"cadence/internal/workflow"
)

// FromJob converts a queue job into its transport form.
func FromJob(job *queue.Job) Job {
	if job == nil {
		return Job{}
	}
	out := Job{
		ID:          job.ID,
		URL:         job.URL,
		Codec:       job.Codec,
		Title:       job.Title,
		Artist:      job.Artist,
		Album:       job.Album,
		Image:       job.Image,
		TrackNumber: job.TrackNumber,
		TotalTracks: job.TotalTracks,
		Status:      string(job.Status),
		Progress:    job.Progress,
		SubTasks:    make([]SubTask, 0, len(job.SubTasks)),
		CreatedAt:   formatTime(job.CreatedAt),
		StartedAt:   formatTime(job.StartedAt),
		FinishedAt:  formatTime(job.FinishedAt),
	}
	for _, st := range job.SubTasks {
		out.SubTasks = append(out.SubTasks, SubTask{
			TrackNumber: st.TrackNumber,
			Title:       st.Title,
			Status:      string(st.Status),
		})
	}
	return out
}

// FromJobs converts a queue snapshot preserving order.
func FromJobs(jobs []*queue.Job) []Job {
	out := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, FromJob(job))
	}
	return out
}

// MergeQueueStats returns counts for every known status, zero-filled.
func MergeQueueStats(stats map[queue.Status]int) map[string]int {
	out := make(map[string]int, len(queue.AllStatuses()))
	for _, status := range queue.AllStatuses() {
		out[string(status)] = stats[status]
	}
	return out
}

// FromStatusSummary converts workflow diagnostics.
func FromStatusSummary(summary workflow.StatusSummary) WorkflowStatus {
	status := WorkflowStatus{
		Running:       summary.Running,
		ParallelLimit: summary.ParallelLimit,
		Active:        summary.Active,
		QueueStats:    MergeQueueStats(summary.QueueStats),
		LastError:     summary.LastError,
	}
	if summary.LastJob != nil {
		job := FromJob(summary.LastJob)
		status.LastJob = &job
	}
	return status
}

// FromDependencies converts binary checks.
func FromDependencies(statuses []deps.Status) []DependencyStatus {
	out := make([]DependencyStatus, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, DependencyStatus{
			Name:        s.Name,
			Command:     s.Command,
			Description: s.Description,
			Optional:    s.Optional,
			Available:   s.Available,
			Detail:      s.Detail,
		})
	}
	return out
}

// ParseTime parses a timestamp produced by this package. It returns the
// zero time for empty or malformed input.
func ParseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	return time.Time{}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
