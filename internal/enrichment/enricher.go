package enrichment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cadence/internal/catalog"
	"cadence/internal/logging"
	"cadence/internal/metrics"
	"cadence/internal/queue"
	"cadence/internal/services"
)

// Outcome labels recorded per attempt.
const (
	ResultResolved    = "resolved"
	ResultUnsupported = "unsupported"
	ResultFailed      = "failed"
)

// Lookuper resolves a catalog reference.
type Lookuper interface {
	Lookup(ctx context.Context, ref catalog.Reference) (*catalog.Metadata, error)
}

// Broadcaster receives human-readable status lines.
type Broadcaster interface {
	Broadcast(line string)
}

// Enricher resolves job metadata in the background.
type Enricher struct {
	queue   *queue.Queue
	lookup  Lookuper
	hub     Broadcaster
	metrics *metrics.Recorder
	logger  *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// Option configures optional Enricher behavior.
type Option func(*Enricher)

// WithMetrics records enrichment outcomes.
func WithMetrics(r *metrics.Recorder) Option {
	return func(e *Enricher) {
		e.metrics = r
	}
}

// WithTimeout bounds each background lookup.
func WithTimeout(d time.Duration) Option {
	return func(e *Enricher) {
		e.timeout = d
	}
}

// New constructs an Enricher. A nil lookup disables enrichment.
func New(q *queue.Queue, lookup Lookuper, hub Broadcaster, logger *slog.Logger, opts ...Option) *Enricher {
	e := &Enricher{
		queue:  q,
		lookup: lookup,
		hub:    hub,
		logger: logging.NewComponentLogger(logger, "enrichment"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enabled reports whether a catalog is attached.
func (e *Enricher) Enabled() bool {
	return e != nil && e.lookup != nil
}

// Go enriches the job in a new goroutine. Failures are logged, never
// returned.
func (e *Enricher) Go(ctx context.Context, id int64) {
	if !e.Enabled() {
		return
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ctx := services.WithJobID(ctx, id)
		if e.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, e.timeout)
			defer cancel()
		}
		if err := e.Enrich(ctx, id); err != nil {
			logging.WithContext(ctx, e.logger).Warn("metadata enrichment failed", logging.Error(err))
		}
	}()
}

// Wait blocks until every enrichment started with Go has returned.
func (e *Enricher) Wait() {
	if e == nil {
		return
	}
	e.wg.Wait()
}

// Enrich resolves the job's URL and applies the result. Jobs whose URL is not
// a catalog reference are left untouched.
func (e *Enricher) Enrich(ctx context.Context, id int64) error {
	if !e.Enabled() {
		return nil
	}
	job, err := e.queue.Get(id)
	if err != nil {
		return err
	}
	ref, ok := catalog.ParseReference(job.URL)
	if !ok {
		e.metrics.Enrichment(ResultUnsupported)
		e.logger.Debug("url is not a catalog reference", logging.String(logging.FieldURL, job.URL))
		return nil
	}

	meta, err := e.lookup.Lookup(ctx, ref)
	if err != nil {
		e.metrics.Enrichment(ResultFailed)
		return fmt.Errorf("lookup %s: %w", ref.Key(), err)
	}

	var snapshot *queue.Job
	err = e.queue.Update(id, func(j *queue.Job) {
		Apply(j, ref, meta)
		snapshot = j.Clone()
	})
	if err != nil {
		e.metrics.Enrichment(ResultFailed)
		if errors.Is(err, queue.ErrNotFound) {
			// Cleared while the lookup was in flight.
			return nil
		}
		return err
	}
	e.metrics.Enrichment(ResultResolved)

	tracks := len(snapshot.SubTasks)
	album := snapshot.Album
	if album == "" {
		album = snapshot.Title
	}
	line := fmt.Sprintf("Metadata resolved: %s - %s (%d tracks)", snapshot.Artist, album, tracks)
	e.logger.Info("metadata resolved",
		logging.Int64(logging.FieldJobID, id),
		logging.String("kind", ref.Kind),
		logging.Int("tracks", tracks),
	)
	if e.hub != nil {
		e.hub.Broadcast(line)
	}
	return nil
}

// Apply merges catalog metadata into a job. Only empty display fields are
// filled. Album lookups also set Album and Title to the album name and
// replace the sub-task list with the album's tracks, unless the job has
// already finished.
func Apply(job *queue.Job, ref catalog.Reference, meta *catalog.Metadata) {
	if job == nil || meta == nil {
		return
	}
	if job.Artist == "" {
		job.Artist = meta.Artist
	}
	if job.Image == "" {
		job.Image = meta.Image
	}

	if ref.Kind != catalog.KindAlbums {
		if job.Title == "" {
			job.Title = meta.Name
		}
		if job.Album == "" {
			job.Album = meta.Album
		}
		if job.TrackNumber == 0 {
			job.TrackNumber = meta.TrackNumber
		}
		if job.TotalTracks == 0 {
			job.TotalTracks = meta.TrackCount
		}
		return
	}

	job.Album = meta.Name
	job.Title = meta.Name
	if job.TotalTracks == 0 {
		job.TotalTracks = max(meta.TrackCount, len(meta.Tracks))
	}
	if job.Status.IsTerminal() || len(meta.Tracks) == 0 {
		return
	}
	subtasks := make([]queue.SubTask, 0, len(meta.Tracks))
	for _, t := range meta.Tracks {
		subtasks = append(subtasks, queue.SubTask{
			TrackNumber: t.Number,
			Title:       t.Title,
			Status:      queue.SubTaskPending,
		})
	}
	job.SubTasks = subtasks
}
