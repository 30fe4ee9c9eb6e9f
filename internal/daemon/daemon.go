package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"

	"github.com/gofrs/flock"

	"cadence/internal/api"
	"cadence/internal/broadcast"
	"cadence/internal/config"
	"cadence/internal/logging"
	"cadence/internal/metrics"
	"cadence/internal/preflight"
	"cadence/internal/queue"
	"cadence/internal/workflow"
)

// Waiter is background work the daemon drains on shutdown.
type Waiter interface {
	Wait()
}

// Daemon coordinates the background services and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	queue    *queue.Queue
	hub      *broadcast.Hub
	workflow *workflow.Manager
	service  *api.Service
	metrics  *metrics.Recorder
	pending  []Waiter
	logPath  string

	lockPath string
	lock     *flock.Flock
	server   *apiServer

	running atomic.Bool
	cancel  context.CancelFunc
}

// Option configures optional Daemon collaborators.
type Option func(*Daemon)

// WithMetrics exposes the recorder on /metrics.
func WithMetrics(r *metrics.Recorder) Option {
	return func(d *Daemon) {
		d.metrics = r
	}
}

// WithLogPath records the log file reported by status.
func WithLogPath(path string) Option {
	return func(d *Daemon) {
		d.logPath = path
	}
}

// WithBackground registers work to drain after the workflow stops.
func WithBackground(w Waiter) Option {
	return func(d *Daemon) {
		if w != nil {
			d.pending = append(d.pending, w)
		}
	}
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, q *queue.Queue, hub *broadcast.Hub, wf *workflow.Manager, svc *api.Service, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil || q == nil || hub == nil || wf == nil || svc == nil {
		return nil, errors.New("daemon requires config, queue, hub, workflow manager, and service")
	}
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		queue:    q,
		hub:      hub,
		workflow: wf,
		service:  svc,
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.server = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock, launches dispatch and begins serving the API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := d.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another cadence daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.workflow.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start workflow: %w", err)
	}
	if err := d.server.start(runCtx); err != nil {
		cancel()
		d.workflow.Stop()
		_ = d.lock.Unlock()
		return err
	}

	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("cadence daemon started",
		logging.String("lock", d.lockPath),
		logging.String("api", d.Addr()),
		logging.Int("parallel_limit", d.workflow.ParallelLimit()),
	)
	return nil
}

// Stop cancels event streams and running workers, shuts the API down, waits
// for jobs to be recorded and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.server.stop()
	d.workflow.Stop()
	for _, w := range d.pending {
		w.Wait()
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("cadence daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// Addr reports the bound API address, or "" before Start.
func (d *Daemon) Addr() string {
	return d.server.addr()
}

// Handler returns the API handler, for embedding and tests.
func (d *Daemon) Handler() http.Handler {
	return d.server.handler
}

// LockPath returns the single-instance lock file.
func (d *Daemon) LockPath() string {
	return d.lockPath
}

// Status returns the current daemon status.
func (d *Daemon) Status(context.Context) api.DaemonStatus {
	status := api.DaemonStatus{
		Running:        d.running.Load(),
		PID:            os.Getpid(),
		LockFilePath:   d.lockPath,
		LogPath:        d.logPath,
		CatalogEnabled: d.cfg.Catalog.Enabled,
		CachePath:      d.cfg.Catalog.CachePath,
		Observers:      d.hub.Len(),
		Workflow:       api.FromStatusSummary(d.workflow.Status()),
		Dependencies:   api.FromDependencies(preflight.CheckSystemDeps(d.cfg)),
	}
	return status
}
