package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"cadence/internal/catalog"
	"cadence/internal/logging"
	"cadence/internal/metrics"
	"cadence/internal/queue"
	"cadence/internal/services"
)

// Dispatcher is the scheduler surface the service drives.
type Dispatcher interface {
	Signal()
	SetParallelLimit(n int) int
}

// Broadcaster receives human-readable status lines.
type Broadcaster interface {
	Broadcast(line string)
}

// Catalog answers search and artist queries.
type Catalog interface {
	Search(ctx context.Context, term, storefront string) (*catalog.SearchResults, error)
	Artist(ctx context.Context, pageURL string) (*catalog.Discography, error)
}

// Settings is the worker settings file.
type Settings interface {
	Settings() (map[string]any, error)
	Update(changes map[string]any) (map[string]any, error)
	Storefront() string
}

// Enricher starts background metadata resolution for a job.
type Enricher interface {
	Go(ctx context.Context, id int64)
}

// Service implements the queue control surface.
type Service struct {
	queue    *queue.Queue
	dispatch Dispatcher
	hub      Broadcaster
	catalog  Catalog
	settings Settings
	enricher Enricher
	metrics  *metrics.Recorder
	logger   *slog.Logger
	validate *validator.Validate
	baseCtx  context.Context
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithCatalog enables search and artist lookups.
func WithCatalog(c Catalog) Option {
	return func(s *Service) {
		s.catalog = c
	}
}

// WithSettings exposes the worker settings file.
func WithSettings(settings Settings) Option {
	return func(s *Service) {
		s.settings = settings
	}
}

// WithEnricher starts enrichment after each submission.
func WithEnricher(e Enricher) Option {
	return func(s *Service) {
		s.enricher = e
	}
}

// WithMetrics records submissions.
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Service) {
		s.metrics = r
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logging.NewComponentLogger(logger, "api")
	}
}

// WithBaseContext sets the context background work outlives requests on.
func WithBaseContext(ctx context.Context) Option {
	return func(s *Service) {
		if ctx != nil {
			s.baseCtx = ctx
		}
	}
}

// NewService builds a Service over the queue and dispatcher.
func NewService(q *queue.Queue, dispatch Dispatcher, hub Broadcaster, opts ...Option) *Service {
	s := &Service{
		queue:    q,
		dispatch: dispatch,
		hub:      hub,
		logger:   logging.NewComponentLogger(nil, "api"),
		validate: NewValidator(),
		baseCtx:  context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates and enqueues a download, then starts enrichment and
// signals dispatch.
func (s *Service) Submit(ctx context.Context, req DownloadRequest) (*Job, error) {
	req.URL = strings.TrimSpace(req.URL)
	req.Codec = strings.ToLower(strings.TrimSpace(req.Codec))
	if err := s.validate.StructCtx(ctx, req); err != nil {
		return nil, validationError("submit", err)
	}

	job, err := s.queue.Submit(queue.Request{
		URL:         req.URL,
		Codec:       req.Codec,
		Title:       req.Title,
		Artist:      req.Artist,
		Album:       req.Album,
		Image:       req.Image,
		TrackNumber: req.TrackNumber,
		TotalTracks: req.TotalTracks,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "api", "submit", "enqueue", err)
	}

	s.metrics.JobSubmitted()
	logging.WithContext(ctx, s.logger).Info("job queued",
		logging.Int64(logging.FieldJobID, job.ID),
		logging.String(logging.FieldURL, job.URL),
		logging.String("codec", job.Codec),
	)
	s.broadcast("Added to queue: " + job.URL)
	if s.enricher != nil {
		s.enricher.Go(s.baseCtx, job.ID)
	}
	s.dispatch.Signal()

	view := FromJob(job)
	return &view, nil
}

// List returns every job in submission order.
func (s *Service) List(context.Context) []Job {
	return FromJobs(s.queue.List())
}

// SetParallelLimit changes the concurrency ceiling and returns the value in
// effect.
func (s *Service) SetParallelLimit(ctx context.Context, n int) int {
	applied := s.dispatch.SetParallelLimit(n)
	logging.WithContext(ctx, s.logger).Info("parallel limit changed", logging.Int("limit", applied))
	return applied
}

// ClearTerminal drops completed and failed jobs.
func (s *Service) ClearTerminal(ctx context.Context) int {
	removed := s.queue.ClearTerminal()
	logging.WithContext(ctx, s.logger).Info("history cleared", logging.Int("removed", removed))
	s.broadcast("History cleared.")
	return removed
}

// Search queries the catalog using the storefront from the worker settings
// when present.
func (s *Service) Search(ctx context.Context, term string) (*catalog.SearchResults, error) {
	if s.catalog == nil {
		return nil, errCatalogDisabled("search")
	}
	if strings.TrimSpace(term) == "" {
		return nil, services.Wrap(services.ErrValidation, "api", "search", "query is required", nil)
	}
	storefront := ""
	if s.settings != nil {
		storefront = s.settings.Storefront()
	}
	return s.catalog.Search(ctx, term, storefront)
}

// Artist resolves an artist page into a discography.
func (s *Service) Artist(ctx context.Context, pageURL string) (*catalog.Discography, error) {
	if s.catalog == nil {
		return nil, errCatalogDisabled("artist")
	}
	if strings.TrimSpace(pageURL) == "" {
		return nil, services.Wrap(services.ErrValidation, "api", "artist", "url is required", nil)
	}
	return s.catalog.Artist(ctx, strings.TrimSpace(pageURL))
}

// Settings returns the worker settings file contents.
func (s *Service) Settings(context.Context) (map[string]any, error) {
	if s.settings == nil {
		return nil, services.Wrap(services.ErrUnavailable, "api", "settings", "worker settings not configured", nil)
	}
	return s.settings.Settings()
}

// UpdateSettings merges changes into the worker settings file.
func (s *Service) UpdateSettings(ctx context.Context, changes map[string]any) (map[string]any, error) {
	if s.settings == nil {
		return nil, services.Wrap(services.ErrUnavailable, "api", "settings", "worker settings not configured", nil)
	}
	if len(changes) == 0 {
		return nil, services.Wrap(services.ErrValidation, "api", "settings", "no settings supplied", nil)
	}
	updated, err := s.settings.Update(changes)
	if err != nil {
		return nil, err
	}
	logging.WithContext(ctx, s.logger).Info("worker settings updated", logging.Int("keys", len(changes)))
	s.broadcast("Settings updated")
	return updated, nil
}

func (s *Service) broadcast(line string) {
	if s.hub != nil {
		s.hub.Broadcast(line)
	}
}

func errCatalogDisabled(op string) error {
	return services.Wrap(services.ErrUnavailable, "api", op, "catalog is disabled", nil)
}

func validationError(op string, err error) error {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return services.Wrap(services.ErrValidation, "api", op, "invalid request", err)
	}
	msgs := make([]string, 0, len(fields))
	for _, fe := range fields {
		msgs = append(msgs, describeField(fe))
	}
	return services.Wrap(services.ErrValidation, "api", op, strings.Join(msgs, "; "), nil)
}

func describeField(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "http_url", "url":
		return name + " must be an http(s) URL"
	case "codec":
		return fmt.Sprintf("%s must be one of %s", name, strings.Join(Codecs, ", "))
	default:
		return fmt.Sprintf("%s failed %s", name, fe.Tag())
	}
}
