package queue

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Queue is the single owner of all jobs.
type Queue struct {
	mu     sync.Mutex
	jobs   []*Job
	nextID int64
	now    func() time.Time
}

// New constructs an empty queue.
func New() *Queue {
	return &Queue{now: func() time.Time { return time.Now().UTC() }}
}

// Submit appends a pending job and returns a copy of it.
func (q *Queue) Submit(req Request) (*Job, error) {
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return nil, fmt.Errorf("%w: url is required", ErrInvalidRequest)
	}
	codec := strings.ToLower(strings.TrimSpace(req.Codec))
	if codec == "" {
		codec = DefaultCodec
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextID++
	job := &Job{
		ID:          q.nextID,
		URL:         url,
		Codec:       codec,
		Title:       strings.TrimSpace(req.Title),
		Artist:      strings.TrimSpace(req.Artist),
		Album:       strings.TrimSpace(req.Album),
		Image:       strings.TrimSpace(req.Image),
		TrackNumber: max(req.TrackNumber, 0),
		TotalTracks: max(req.TotalTracks, 0),
		SubTasks:    []SubTask{},
		Status:      StatusPending,
		CreatedAt:   q.now(),
	}
	q.jobs = append(q.jobs, job)
	return job.Clone(), nil
}

// List returns a snapshot of every job in submission order.
func (q *Queue) List() []*Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*Job, 0, len(q.jobs))
	for _, job := range q.jobs {
		out = append(out, job.Clone())
	}
	return out
}

// Get returns a copy of one job.
func (q *Queue) Get(id int64) (*Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job := q.findLocked(id)
	if job == nil {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return job.Clone(), nil
}

// Update runs fn against the live job under the queue lock. fn may change
// display fields, progress text and sub-tasks but not the job status; use
// Transition for that.
func (q *Queue) Update(id int64, fn func(*Job)) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	job := q.findLocked(id)
	if job == nil {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	status := job.Status
	fn(job)
	if job.Status != status {
		job.Status = status
		return fmt.Errorf("%w: status changes require Transition", ErrInvalidTransition)
	}
	return nil
}

// Transition moves a job to the next status, sets its progress text and
// optionally applies fn in the same critical section.
func (q *Queue) Transition(id int64, next Status, progress string, fn func(*Job)) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	job := q.findLocked(id)
	if job == nil {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if !job.Status.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, job.Status, next)
	}
	if fn != nil {
		fn(job)
	}
	q.applyStatusLocked(job, next)
	job.Progress = progress
	return nil
}

// Complete marks a downloading job completed with the given progress text.
func (q *Queue) Complete(id int64, progress string, fn func(*Job)) error {
	return q.Transition(id, StatusCompleted, progress, fn)
}

// Fail marks a job failed with the given progress text.
func (q *Queue) Fail(id int64, progress string, fn func(*Job)) error {
	return q.Transition(id, StatusFailed, progress, fn)
}

// Claim selects the oldest pending job and marks it downloading, provided
// fewer than limit jobs are downloading. It returns false when there is no
// capacity or no pending job.
func (q *Queue) Claim(limit int, progress string) (*Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.activeLocked() >= max(limit, 0) {
		return nil, false
	}
	for _, job := range q.jobs {
		if job.Status != StatusPending {
			continue
		}
		q.applyStatusLocked(job, StatusDownloading)
		job.Progress = progress
		return job.Clone(), true
	}
	return nil, false
}

// ClearTerminal removes completed and failed jobs and reports how many were dropped.
func (q *Queue) ClearTerminal() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.jobs[:0]
	removed := 0
	for _, job := range q.jobs {
		if job.Status.IsTerminal() {
			removed++
			continue
		}
		kept = append(kept, job)
	}
	clear(q.jobs[len(kept):])
	q.jobs = kept
	return removed
}

// ActiveCount returns the number of downloading jobs.
func (q *Queue) ActiveCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.activeLocked()
}

// Stats returns job counts keyed by status.
func (q *Queue) Stats() map[Status]int {
	q.mu.Lock()
	defer q.mu.Unlock()
	stats := make(map[Status]int, len(allStatuses))
	for _, status := range allStatuses {
		stats[status] = 0
	}
	for _, job := range q.jobs {
		stats[job.Status]++
	}
	return stats
}

func (q *Queue) applyStatusLocked(job *Job, next Status) {
	job.Status = next
	switch {
	case next == StatusDownloading:
		job.StartedAt = q.now()
	case next.IsTerminal():
		job.FinishedAt = q.now()
	}
}

func (q *Queue) activeLocked() int {
	count := 0
	for _, job := range q.jobs {
		if job.Status == StatusDownloading {
			count++
		}
	}
	return count
}

func (q *Queue) findLocked(id int64) *Job {
	for _, job := range q.jobs {
		if job.ID == id {
			return job
		}
	}
	return nil
}
