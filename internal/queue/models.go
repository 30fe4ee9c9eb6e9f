package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a job.
type Status string

const (
	StatusPending     Status = "pending"
	StatusDownloading Status = "downloading"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
)

// DefaultCodec is used when a submission does not name an encoding variant.
const DefaultCodec = "alac"

var allStatuses = []Status{
	StatusPending,
	StatusDownloading,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether moving from s to next respects the
// pending -> downloading -> completed|failed order.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusDownloading
	case StatusDownloading:
		return next == StatusCompleted || next == StatusFailed
	default:
		return false
	}
}

// SubTaskStatus is the state of one track inside a job.
type SubTaskStatus string

const (
	SubTaskPending     SubTaskStatus = "pending"
	SubTaskDownloading SubTaskStatus = "downloading"
	SubTaskCompleted   SubTaskStatus = "completed"
	SubTaskSkipped     SubTaskStatus = "skipped"
	SubTaskFailed      SubTaskStatus = "failed"
)

// SubTask is one track of a multi-track job.
type SubTask struct {
	TrackNumber int
	Title       string
	Status      SubTaskStatus
}

// Request carries the fields a client supplies on submission.
type Request struct {
	URL         string
	Codec       string
	Title       string
	Artist      string
	Album       string
	Image       string
	TrackNumber int
	TotalTracks int
}

// Job is one queued acquisition request.
type Job struct {
	ID          int64
	URL         string
	Codec       string
	Title       string
	Artist      string
	Album       string
	Image       string
	TrackNumber int
	TotalTracks int
	SubTasks    []SubTask
	Status      Status
	Progress    string
	CreatedAt   time.Time
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Clone returns a deep copy safe to hand outside the queue lock.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	cp := *j
	if j.SubTasks != nil {
		cp.SubTasks = make([]SubTask, len(j.SubTasks))
		copy(cp.SubTasks, j.SubTasks)
	}
	return &cp
}

// SubTaskIndex finds the sub-task for a 1-based track number.
func (j *Job) SubTaskIndex(track int) (int, bool) {
	for idx, st := range j.SubTasks {
		if st.TrackNumber == track {
			return idx, true
		}
	}
	return -1, false
}

// SetSubTaskStatus updates the sub-task at idx, ignoring out-of-range indexes.
func (j *Job) SetSubTaskStatus(idx int, status SubTaskStatus) bool {
	if idx < 0 || idx >= len(j.SubTasks) {
		return false
	}
	j.SubTasks[idx].Status = status
	return true
}

// DisplayName returns the most descriptive label available for logs and tables.
func (j *Job) DisplayName() string {
	switch {
	case j.Artist != "" && j.Title != "":
		return j.Artist + " - " + j.Title
	case j.Title != "":
		return j.Title
	case j.Album != "":
		return j.Album
	default:
		return j.URL
	}
}
